package report

import "strings"

// HumanizeLabel derives a display label from a field path: underscores and
// dots become spaces, and each word is ASCII title-cased. The transform is
// locale-independent so the same payload always renders the same label.
func HumanizeLabel(path string) string {
	replaced := strings.NewReplacer("_", " ", ".", " ").Replace(path)
	words := strings.Fields(replaced)
	for i, w := range words {
		if w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}
