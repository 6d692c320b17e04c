package chunk

import (
	"fmt"
	"regexp"
	"strings"

	ragagent "github.com/guychikaAL/RagAgent"
)

// Content-feature patterns used for exact-match filtering downstream.
var (
	dateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}`)
	timeRe   = regexp.MustCompile(`\d{1,2}:\d{2}`)
	numberRe = regexp.MustCompile(`\d+`)
)

// topicWords is how many leading words form a parent chunk's topic label.
const topicWords = 5

// contextHeader builds the record-context prefix attached to every parent
// and child chunk. A chunk divorced from its neighbors may lack identifying
// context ("the vehicle was a sedan" says nothing about which claim it
// belongs to), so the record number and form title are embedded into the
// chunk text itself.
func contextHeader(record ragagent.Record) string {
	title := record.Title
	if title == "" {
		title = fmt.Sprintf("AUTO CLAIM FORM #%s", record.RecordNumber)
	}
	return fmt.Sprintf("CLAIM NUMBER: %s\n%s\n", record.RecordNumber, title)
}

// baseMetadata copies the record-level inheritance chain shared by every
// node so that filtering works at any hierarchy level without traversal.
func baseMetadata(record ragagent.Record, level ragagent.ChunkLevel) ragagent.NodeMetadata {
	return ragagent.NodeMetadata{
		RecordID:     record.RecordID,
		RecordNumber: record.RecordNumber,
		SubjectName:  record.SubjectName,
		DocumentID:   record.DocumentID,
		DocumentType: record.DocumentType,
		SourceType:   record.SourceType,
		ChunkLevel:   level,
	}
}

// buildSectionNode creates the title-only organizational node for a section.
func (p *Pipeline) buildSectionNode(section Section, record ragagent.Record) ragagent.Node {
	sectionID := ragagent.DeterministicID(
		fmt.Sprintf("section_%s_%d", record.RecordID, section.PositionIndex))

	md := baseMetadata(record, ragagent.LevelSection)
	md.Title = section.Title
	md.PositionIndex = section.PositionIndex
	md.StartCharIndex = section.StartChar
	md.EndCharIndex = section.EndChar
	md.TokenLength = estimateTokens(section.Text)

	return ragagent.Node{
		NodeID:   sectionID,
		Level:    ragagent.LevelSection,
		Text:     section.Title, // just the title, never the section body
		Metadata: md,
	}
}

// buildParentNodes splits a section into parent chunks and creates their
// nodes, linked upward to the section. CHILD links are filled in later by
// the assembler, once the children exist.
func (p *Pipeline) buildParentNodes(section Section, sectionID string, record ragagent.Record) []ragagent.Node {
	if sectionID == "" {
		panic("chunk: buildParentNodes called without a section id")
	}

	header := contextHeader(record)
	chunks := p.splitParentChunks(section.Text)

	nodes := make([]ragagent.Node, 0, len(chunks))
	for pos, text := range chunks {
		parentID := ragagent.DeterministicID(fmt.Sprintf("parent_%s_%d", sectionID, pos))
		contextualized := header + text

		md := baseMetadata(record, ragagent.LevelParent)
		md.SectionID = sectionID
		md.PositionIndex = pos
		md.TokenLength = estimateTokens(text)
		md.SemanticTopic = topicLabel(text)
		md.ContainsDates = dateRe.MatchString(text)
		md.ContainsTimes = timeRe.MatchString(text)
		md.ContainsNumbers = numberRe.MatchString(text)

		nodes = append(nodes, ragagent.Node{
			NodeID:        parentID,
			Level:         ragagent.LevelParent,
			Text:          contextualized,
			Metadata:      md,
			Relationships: ragagent.Relationships{Parent: sectionID},
		})
	}
	return nodes
}

// buildChildNodes splits one parent chunk into child chunks and creates
// their nodes, linked upward to the parent and, for diagnostics, to the
// section. The parent's contextualized text is the input; each child gets
// the same record-context header prefixed again for standalone matching.
func (p *Pipeline) buildChildNodes(parent *ragagent.Node, sectionID string, record ragagent.Record) []ragagent.Node {
	if parent.NodeID == "" || sectionID == "" {
		// Orphaned children silently corrupt the relationship graph that
		// auto-merge retrieval depends on; this is a programming error.
		panic("chunk: buildChildNodes called without ancestor ids")
	}

	header := contextHeader(record)
	chunks := p.splitChildChunks(parent.Text)

	nodes := make([]ragagent.Node, 0, len(chunks))
	for pos, text := range chunks {
		childID := ragagent.DeterministicID(fmt.Sprintf("child_%s_%d", parent.NodeID, pos))
		contextualized := header + text

		md := baseMetadata(record, ragagent.LevelChild)
		md.ParentID = parent.NodeID
		md.SectionID = sectionID
		md.PositionIndex = pos
		md.TokenLength = estimateTokens(text)
		md.ContainsDates = dateRe.MatchString(text)
		md.ContainsTimes = timeRe.MatchString(text)
		md.ContainsNumbers = numberRe.MatchString(text)

		nodes = append(nodes, ragagent.Node{
			NodeID:   childID,
			Level:    ragagent.LevelChild,
			Text:     contextualized,
			Metadata: md,
			Relationships: ragagent.Relationships{
				Parent: parent.NodeID,
				Source: sectionID,
			},
		})
	}
	return nodes
}

// topicLabel returns the first few words of a chunk as a short topic hint.
func topicLabel(text string) string {
	words := strings.Fields(text)
	if len(words) <= topicWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:topicWords], " ") + "..."
}
