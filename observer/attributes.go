package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for pipeline observability spans and metrics.
var (
	AttrDocumentID   = attribute.Key("pipeline.document_id")
	AttrDocumentType = attribute.Key("pipeline.document_type")
	AttrSourceFile   = attribute.Key("pipeline.source_file")

	AttrRecordID     = attribute.Key("pipeline.record_id")
	AttrRecordCount  = attribute.Key("pipeline.record_count")
	AttrNodeCount    = attribute.Key("pipeline.node_count")
	AttrSectionCount = attribute.Key("pipeline.section_count")

	AttrStage  = attribute.Key("pipeline.stage")
	AttrStatus = attribute.Key("pipeline.status")

	AttrEmbedModel     = attribute.Key("embed.model")
	AttrEmbedTextCount = attribute.Key("embed.text_count")
)
