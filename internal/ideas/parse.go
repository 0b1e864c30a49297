package ideas

import (
	"regexp"
	"strings"
)

// MinIdeaLength is the shortest line accepted as an idea.
const MinIdeaLength = 16

var enumerationPrefix = regexp.MustCompile(`^\d+[).\s]+`)

// ParseIdeas splits model output into candidate ideas. A leading enumeration
// marker such as "1." or "2)" is removed and lines shorter than
// MinIdeaLength characters after trimming are dropped.
func ParseIdeas(text string) []string {
	var ideas []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(enumerationPrefix.ReplaceAllString(line, ""))
		if len([]rune(line)) >= MinIdeaLength {
			ideas = append(ideas, line)
		}
	}
	return ideas
}
