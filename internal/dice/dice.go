// Package dice draws dice values and renders dice faces as text.
package dice

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Faces is the number of sides on the dice.
const Faces = 6

// dotPatterns lays out each face on a 3x3 grid, row-major.
var dotPatterns = [Faces][9]bool{
	{false, false, false, false, true, false, false, false, false},
	{true, false, false, false, false, false, false, false, true},
	{true, false, false, false, true, false, false, false, true},
	{true, false, true, false, false, false, true, false, true},
	{true, false, true, false, true, false, true, false, true},
	{true, false, true, true, false, true, true, false, true},
}

// Roll draws a uniform value in [1, Faces] from r.
func Roll(r *rand.Rand) int {
	return r.IntN(Faces) + 1
}

// Pattern returns the 3x3 dot layout for value. Out-of-range values panic.
func Pattern(value int) [9]bool {
	if value < 1 || value > Faces {
		panic(fmt.Sprintf("dice: face %d out of range", value))
	}
	return dotPatterns[value-1]
}

// Render draws value as three rows of dots separated by spaces.
func Render(value int, dot, blank string) string {
	p := Pattern(value)
	var b strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			if p[row*3+col] {
				b.WriteString(dot)
			} else {
				b.WriteString(blank)
			}
		}
	}
	return b.String()
}

// Label is the caption shown after a roll, e.g. "You rolled a 3: showing 3 Space facts".
func Label(value int, topicName string) string {
	plural := "s"
	if value == 1 {
		plural = ""
	}
	return fmt.Sprintf("You rolled a %d: showing %d %s fact%s", value, value, topicName, plural)
}

// Prompt is the caption shown before the first roll of a topic.
func Prompt(topicName string) string {
	return fmt.Sprintf("Roll the dice to see that many %s facts!", topicName)
}
