// Package mcp provides a Model Context Protocol server for factdice.
//
// It exposes the dice roll, the topic table and the roll history as MCP
// tools, and the topic table as an MCP resource. Served over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/factdice/internal/config"
	"github.com/hurttlocker/factdice/internal/logging"
	"github.com/hurttlocker/factdice/internal/roll"
	"github.com/hurttlocker/factdice/internal/store"
	"github.com/hurttlocker/factdice/internal/topic"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Session *roll.Session
	Store   store.Store // optional; history tool is omitted without it
	Version string      // version string for MCP server info
}

// NewServer creates a configured MCP server with all factdice tools and resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"factdice",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerRollTool(s, cfg.Session)
	registerTopicsTool(s)
	if cfg.Store != nil {
		registerHistoryTool(s, cfg.Store)
	}

	registerTopicsResource(s)

	return s
}

// ServeStdio runs srv on stdin/stdout until the client disconnects.
func ServeStdio(srv *server.MCPServer) error {
	return server.ServeStdio(srv)
}

// --- Tools ---

func registerRollTool(s *server.MCPServer, session *roll.Session) {
	tool := mcp.NewTool("factdice_roll",
		mcp.WithDescription("Roll a six-sided dice and get that many facts about a topic. Facts come from Gemini when configured, otherwise from a static pool."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("topic",
			mcp.Description("Topic id (see factdice_topics). Unknown ids use a general pool. Default: agent-ai"),
		),
		mcp.WithString("mode",
			mcp.Description("Fact source: remote (Gemini with fallback) or local (static pool, avoids repeating the last roll)"),
			mcp.Enum(config.ModeRemote, config.ModeLocal),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if session == nil {
			return mcp.NewToolResultError("roll session not configured"), nil
		}
		topicID := topic.DefaultID
		if t, err := req.RequireString("topic"); err == nil && t != "" {
			topicID = t
		}
		mode := ""
		if m, err := req.RequireString("mode"); err == nil {
			mode = m
		}

		log := logging.WithPrefix("mcp")
		res, err := session.RollMode(ctx, topicID, mode)
		if errors.Is(err, roll.ErrRollInFlight) {
			log.Debug("roll rejected, already in flight", "topic", topicID)
			return mcp.NewToolResultError("a roll is already in progress; try again"), nil
		}
		if err != nil {
			log.Warn("roll failed", "topic", topicID, "mode", mode, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("roll error: %v", err)), nil
		}
		log.Debug("roll served", "topic", res.Topic, "dice", res.DiceValue, "source", res.Source)

		data, _ := json.MarshalIndent(res, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

type topicInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

func topicList() []topicInfo {
	all := topic.All()
	out := make([]topicInfo, 0, len(all))
	for _, t := range all {
		out = append(out, topicInfo{ID: t.ID, Name: t.Name, Prompt: t.Prompt})
	}
	return out
}

func registerTopicsTool(s *server.MCPServer) {
	tool := mcp.NewTool("factdice_topics",
		mcp.WithDescription("List the topics factdice can roll facts for."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, _ := json.MarshalIndent(topicList(), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerHistoryTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("factdice_history",
		mcp.WithDescription("List previous rolls, newest first, with the facts that were shown."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rolls to return (default: 20, max: 100)"),
		),
		mcp.WithString("topic",
			mcp.Description("Only rolls for this topic id. Empty = all topics."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts := store.ListOpts{Limit: store.DefaultHistoryLimit}

		if limitVal, err := req.RequireFloat("limit"); err == nil {
			limit := int(limitVal)
			if limit > 100 {
				limit = 100
			}
			if limit > 0 {
				opts.Limit = limit
			}
		}
		if t, err := req.RequireString("topic"); err == nil && t != "" {
			opts.Topic = t
		}

		rolls, err := st.ListRolls(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("history error: %v", err)), nil
		}
		if rolls == nil {
			rolls = []*store.Roll{}
		}

		data, _ := json.MarshalIndent(rolls, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

// --- Resources ---

func registerTopicsResource(s *server.MCPServer) {
	resource := mcp.NewResource(
		"factdice://topics",
		"Fact Topics",
		mcp.WithResourceDescription("Topic ids, display names and remote prompt templates."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, _ := json.MarshalIndent(topicList(), "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
