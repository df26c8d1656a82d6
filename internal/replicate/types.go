// Package replicate provides an HTTP client for the Replicate predictions API.
// Predictions are created in blocking mode: a single call returns the finished
// output or an error, with no partial state retained.
package replicate

import "encoding/json"

// predictionRequest represents the request body for the /predictions endpoint.
type predictionRequest struct {
	Version string          `json:"version,omitempty"`
	Model   string          `json:"model,omitempty"`
	Input   predictionInput `json:"input"`
}

// predictionInput carries the generation parameters.
type predictionInput struct {
	Prompt    string `json:"prompt"`
	NumFrames int    `json:"num_frames"`
	FPS       int    `json:"fps"`
}

// predictionResponse represents the response from the /predictions endpoint.
// Output is either a single URL string or a list of URLs; the first element
// is taken when a list is returned.
type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// outputURL extracts the usable output reference from the raw output field.
func (r *predictionResponse) outputURL() string {
	if len(r.Output) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(r.Output, &single); err == nil {
		return single
	}

	var list []string
	if err := json.Unmarshal(r.Output, &list); err == nil && len(list) > 0 {
		return list[0]
	}

	return ""
}
