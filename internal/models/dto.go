package models

type ExtractResponse struct {
	Success       bool     `json:"success"`
	DocumentID    string   `json:"document_id"`
	MatchedSkills []string `json:"matched_skills"`
}

type AnalyzeRequest struct {
	DocumentID string `json:"document_id"`
	Position   string `json:"position"`
}

type AnalysisResponse struct {
	Success bool      `json:"success"`
	Result  *Analysis `json:"result"`
}

type AnalysisListResponse struct {
	Success  bool       `json:"success"`
	Count    int        `json:"count"`
	Analyses []Analysis `json:"analyses"`
}

type CandidateMatch struct {
	DocumentID string   `json:"document_id"`
	Score      float32  `json:"score"`
	Skills     []string `json:"skills"`
}

type CandidateSearchResponse struct {
	Success    bool             `json:"success"`
	Skills     []string         `json:"skills"`
	Candidates []CandidateMatch `json:"candidates"`
}

type ErrorResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	ErrorKind      string `json:"error_kind,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}
