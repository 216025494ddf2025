package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for segment documents.
//
// The text field carries the search load: English analyzer for stemming,
// term vectors for snippet highlighting. Episode id uses the keyword
// analyzer for exact filtering; timestamps and chapter id are numeric and
// stored so hits can be returned without a store lookup.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName
	textFieldMapping.Store = true
	textFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	episodeFieldMapping := bleve.NewTextFieldMapping()
	episodeFieldMapping.Analyzer = keyword.Name
	episodeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("episode_id", episodeFieldMapping)

	chapterFieldMapping := bleve.NewNumericFieldMapping()
	chapterFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("chapter_id", chapterFieldMapping)

	startFieldMapping := bleve.NewNumericFieldMapping()
	startFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("start", startFieldMapping)

	endFieldMapping := bleve.NewNumericFieldMapping()
	endFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("end", endFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
