package mcp

// SearchInput defines the input schema shared by both search tools.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to execute"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// SearchOutput defines the output schema for the search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"list of ranked search results"`
}

// SearchResultOutput is a single ranked hit.
type SearchResultOutput struct {
	ID    int64   `json:"id" jsonschema:"numeric document id"`
	Title string  `json:"title" jsonschema:"document title"`
	Score float64 `json:"score" jsonschema:"relevance score from the search engine"`
}

// FetchContentInput defines the input schema for the fetch_content tool.
type FetchContentInput struct {
	DocID int64 `json:"doc_id" jsonschema:"numeric id of the document to fetch"`
}

// FetchContentOutput defines the output schema for the fetch_content tool.
type FetchContentOutput struct {
	Found    bool            `json:"found" jsonschema:"false when no document matches the id or its source row is gone"`
	Document *DocumentOutput `json:"document,omitempty" jsonschema:"the resolved document, present when found"`
}

// DocumentOutput is a fully resolved document.
type DocumentOutput struct {
	ID      int64  `json:"id" jsonschema:"numeric document id"`
	Title   string `json:"title" jsonschema:"document title"`
	Content string `json:"content" jsonschema:"full document body read from the corpus"`
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	DocCount  uint64 `json:"doc_count" jsonschema:"documents in the committed index"`
	FileCount int    `json:"file_count" jsonschema:"corpus files recorded as indexed"`
	CorpusDir string `json:"corpus_dir" jsonschema:"corpus directory the server reads from"`
	IndexDir  string `json:"index_dir" jsonschema:"index root directory"`
}
