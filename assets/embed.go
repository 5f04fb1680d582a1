// Package assets holds static content embedded into the binary.
package assets

import (
	"embed"
	"encoding/json"
)

//go:embed resume.json
var FS embed.FS

// Resume is the résumé served at /resume and quoted to the chat assistant.
type Resume struct {
	Header struct {
		Name    string `json:"name"`
		Contact struct {
			Phone    string `json:"phone"`
			Email    string `json:"email"`
			LinkedIn string `json:"linkedin"`
			GitHub   string `json:"github"`
		} `json:"contact"`
	} `json:"header"`
	Education []struct {
		School string `json:"school"`
		Degree string `json:"degree"`
	} `json:"education"`
	Experience []struct {
		Role     string   `json:"role"`
		Company  string   `json:"company"`
		Location string   `json:"location"`
		Period   string   `json:"period"`
		Points   []string `json:"points"`
	} `json:"experience"`
	Projects []struct {
		Title       string `json:"title"`
		Tech        string `json:"tech"`
		Description string `json:"description"`
	} `json:"projects"`
	Skills struct {
		Languages  string `json:"languages"`
		Frameworks string `json:"frameworks"`
		Tools      string `json:"tools"`
		Libraries  string `json:"libraries"`
	} `json:"skills"`
}

// ResumeJSON returns the raw embedded résumé.
func ResumeJSON() ([]byte, error) {
	return FS.ReadFile("resume.json")
}

// LoadResume decodes the embedded résumé.
func LoadResume() (*Resume, []byte, error) {
	raw, err := ResumeJSON()
	if err != nil {
		return nil, nil, err
	}
	var r Resume
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, nil, err
	}
	return &r, raw, nil
}
