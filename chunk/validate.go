package chunk

import (
	"strings"

	ragagent "github.com/guychikaAL/RagAgent"
)

// Validate is the final cleanup pass over an assembled node list. It drops
// nodes without an ID, section nodes with a blank title, and parent/child
// chunks whose trimmed text is empty or shorter than the minimum length;
// surviving chunk text is trimmed in place, since stray whitespace changes
// downstream embeddings. Relationships are never touched.
//
// Validate is idempotent: re-validating an already-valid list returns it
// unchanged.
func Validate(nodes []ragagent.Node) []ragagent.Node {
	cleaned := make([]ragagent.Node, 0, len(nodes))

	for _, node := range nodes {
		if node.NodeID == "" {
			continue
		}

		if node.Level == ragagent.LevelSection {
			if strings.TrimSpace(node.Text) != "" {
				cleaned = append(cleaned, node)
			}
			continue
		}

		trimmed := strings.TrimSpace(node.Text)
		if len(trimmed) < minChunkChars {
			continue
		}
		node.Text = trimmed
		cleaned = append(cleaned, node)
	}

	return cleaned
}
