package http

// CreateTableRequest is the JSON body of POST /v1/tables. Empty fields fall
// back to server defaults.
type CreateTableRequest struct {
	Style  string `json:"style"`
	Filter string `json:"filter"`
}

// TableCreatedResponse is the JSON shape returned by POST /v1/tables.
type TableCreatedResponse struct {
	ID      string `json:"id"`
	Style   string `json:"style"`
	Filter  string `json:"filter"`
	JoinURL string `json:"joinUrl"`
}

// ResetRequest re-deals a table, optionally switching style or filter.
type ResetRequest struct {
	Style  string `json:"style"`
	Filter string `json:"filter"`
}

type UpdateFilterRequest struct {
	Filter string `json:"filter"`
}

type UpdateStyleRequest struct {
	Style string `json:"style"`
}

type StylesResponse struct {
	Styles []string `json:"styles"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
