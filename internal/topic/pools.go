package topic

import "strings"

// DefaultPoolKey names the pool used for unknown topics.
const DefaultPoolKey = "default"

var fallbackPools = map[string][]string{
	"agent-ai": {
		"Agent-based AI systems are composed of autonomous entities called agents that perceive and act within an environment.",
		"Agents can be reactive (responding to stimuli) or deliberative (planning actions based on internal models).",
		"Multi-agent systems involve multiple agents interacting, collaborating, or competing to achieve individual or shared goals.",
		"Agent AI is widely used in robotics, where robots act as agents navigating and manipulating their environment.",
		"In finance, agent-based models simulate markets by modeling traders as agents with different strategies.",
		"Agents can exhibit learning capabilities, adapting their behavior based on experience or feedback.",
	},
	"space": {
		"The largest known star, UY Scuti, is about 1,700 times larger than our Sun.",
		"A day on Venus is longer than a year on Venus.",
		"The footprints left by astronauts on the Moon will likely last for at least 100 million years.",
		"There is a planet made of diamonds called 55 Cancri e.",
		"The Great Red Spot on Jupiter is a storm that has been raging for over 300 years.",
		"Saturn's rings are made mostly of ice particles with some rocky debris and dust.",
	},
	"history": {
		"The shortest war in history was between Britain and Zanzibar on August 27, 1896, lasting only 38 minutes.",
		"Cleopatra lived closer in time to the Moon landing than to the building of the Great Pyramid of Giza.",
		"The first written mention of the number zero was in 628 AD by the Indian mathematician Brahmagupta.",
		"The Hundred Years' War between England and France actually lasted 116 years.",
		"Ancient Romans used urine as mouthwash to whiten their teeth.",
		"Women in Ancient Egypt had more rights and freedoms than women in Ancient Greece.",
	},
	"nature": {
		"Octopuses have three hearts and blue blood.",
		"A group of flamingos is called a flamboyance.",
		"Bananas are berries, but strawberries aren't.",
		"Sloth digestion is so slow that they may take up to a month to digest a single leaf.",
		"The Great Barrier Reef is the largest living structure on Earth.",
		"A single bee colony can produce around 100 pounds of honey in a year.",
	},
	"technology": {
		"The first computer programmer was a woman named Ada Lovelace.",
		"The average smartphone today has more computing power than all of NASA had during the Apollo moon landing.",
		"The world's first website is still online today at info.cern.ch.",
		"There are more than 5 billion searches made on Google every day.",
		"About 90% of the world's data was generated in just the last two years.",
		"The term 'bug' in computing originated when a moth caused a malfunction in an early computer.",
	},
	"science": {
		"One teaspoon of neutron star matter weighs about 6 billion tons.",
		"Human DNA shares 60% of its genes with a banana.",
		"Light travels from the Sun to Earth in about 8 minutes and 20 seconds.",
		"The total weight of all the ants on Earth is roughly equal to the total weight of all humans.",
		"The average lightning bolt contains enough energy to toast 100,000 slices of bread.",
		"A day on Mercury lasts about 176 Earth days.",
	},
	DefaultPoolKey: {
		"The human brain contains approximately 86 billion neurons.",
		"Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old and still perfectly good to eat.",
		"Octopuses have three hearts.",
		"The world's oldest known living tree is over 5,000 years old.",
		"A bolt of lightning is five times hotter than the surface of the sun.",
		"Bananas are berries, but strawberries aren't.",
	},
}

// localPool is the larger pool used by local (non-remote) selection mode.
var localPool = []string{
	"Agent-based AI systems are composed of autonomous entities called agents that perceive and act within an environment.",
	"Agents can be reactive (responding to stimuli) or deliberative (planning actions based on internal models).",
	"Multi-agent systems involve multiple agents interacting, collaborating, or competing to achieve individual or shared goals.",
	"Agent AI is widely used in robotics, where robots act as agents navigating and manipulating their environment.",
	"In finance, agent-based models simulate markets by modeling traders as agents with different strategies.",
	"Agents can exhibit learning capabilities, adapting their behavior based on experience or feedback.",
	"Agent architectures include simple rule-based systems, belief-desire-intention (BDI) models, and neural network-based agents.",
	"Swarm intelligence, inspired by social insects, is a form of agent-based AI where simple agents collectively solve complex problems.",
	"Agent-based simulations are used in epidemiology to model the spread of diseases through populations.",
	"Agents can communicate using protocols, enabling negotiation, cooperation, and coordination.",
	"Autonomous vehicles use agent-based AI to perceive surroundings, make driving decisions, and interact with other vehicles.",
	"Game AI often uses agents to control non-player characters (NPCs) with realistic, adaptive behaviors.",
	"Agents can be physical (robots, drones) or virtual (software bots, digital assistants).",
	"Agent-based AI supports distributed problem-solving, where agents work on subproblems and share results.",
	"Cognitive agents can reason about their environment, predict outcomes, and plan complex sequences of actions.",
	"Agent-based modeling helps researchers study emergent phenomena in social, economic, and ecological systems.",
	"Agents can be designed with varying degrees of autonomy, from fully independent to tightly controlled.",
	"In smart homes, agent AI manages devices, optimizes energy use, and enhances user comfort.",
	"Security systems use agent-based AI for threat detection, response, and adaptive defense.",
	"Agent communication languages (like KQML, FIPA-ACL) standardize how agents exchange information.",
}

// FallbackPool returns a copy of the static pool for id. Unknown ids get the
// default pool and usedDefault is true.
func FallbackPool(id string) (pool []string, usedDefault bool) {
	p, ok := fallbackPools[strings.ToLower(strings.TrimSpace(id))]
	if !ok || id == DefaultPoolKey {
		return append([]string(nil), fallbackPools[DefaultPoolKey]...), true
	}
	return append([]string(nil), p...), false
}

// LocalPool returns a copy of the local-mode pool for id. The agent-ai topic
// has the extended pool; other topics reuse their fallback pool.
func LocalPool(id string) []string {
	if strings.ToLower(strings.TrimSpace(id)) == "agent-ai" {
		return append([]string(nil), localPool...)
	}
	p, _ := FallbackPool(id)
	return p
}
