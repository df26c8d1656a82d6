// Package minimax provides an HTTP client for the Minimax text-to-video API.
package minimax

import "encoding/json"

// generationRequest represents the request body for the /video_generation endpoint.
type generationRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution"`
}

// generationResponse represents the response from the /video_generation
// endpoint. Submission either returns a direct video URL or a task id to poll.
type generationResponse struct {
	TaskID string `json:"task_id,omitempty"`
	ID     string `json:"id,omitempty"`
	taskStatus
}

// statusResponse represents the response from polling a generation task.
type statusResponse struct {
	taskStatus
}

// taskStatus is the status envelope shared by submission and poll responses.
// The output reference may appear top-level or nested; extraction is tolerant
// of both shapes because provider responses vary between API revisions.
type taskStatus struct {
	Status   string        `json:"status,omitempty"`
	VideoURL string        `json:"video_url,omitempty"`
	Result   *nestedResult `json:"result,omitempty"`
	Data     *nestedResult `json:"data,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// nestedResult holds output lists under a result or data object.
type nestedResult struct {
	Videos    []videoEntry `json:"videos,omitempty"`
	VideoList []videoEntry `json:"video_list,omitempty"`
}

// videoEntry is one output item: either a bare URL string or an object
// carrying the URL under "url" or "video_url".
type videoEntry struct {
	URL      string `json:"url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	raw      string
}

// UnmarshalJSON accepts both a JSON string and an object form.
func (v *videoEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.raw = s
		return nil
	}
	type alias videoEntry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = videoEntry(a)
	return nil
}

// ref returns the usable URL from whichever field is populated.
func (v *videoEntry) ref() string {
	if v.raw != "" {
		return v.raw
	}
	if v.URL != "" {
		return v.URL
	}
	return v.VideoURL
}

// extractVideoURL finds the output reference in a status envelope.
// It checks the direct field first, then the nested result and data objects,
// taking the first element of whichever output list is present.
func (t *taskStatus) extractVideoURL() string {
	if t.VideoURL != "" {
		return t.VideoURL
	}
	for _, nested := range []*nestedResult{t.Result, t.Data} {
		if nested == nil {
			continue
		}
		for _, list := range [][]videoEntry{nested.Videos, nested.VideoList} {
			if len(list) > 0 {
				if ref := list[0].ref(); ref != "" {
					return ref
				}
			}
		}
	}
	return ""
}

// SubmitResult is the outcome of a generation submission.
type SubmitResult struct {
	// TaskID is the polling handle, set when generation is asynchronous.
	TaskID string
	// VideoURL is the direct output reference, set when generation
	// completed inline.
	VideoURL string
}
