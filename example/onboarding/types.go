package onboarding

import "github.com/sicko7947/multipageform"

// Feature is the multi-page flow this example drives
var Feature = multipageform.NewFeature("onboarding")

// FormData is the state accumulated across onboarding steps
type FormData struct {
	Step      int      `json:"step"`
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// Step 1: Identity
type IdentityInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Step 2: Interests
type InterestsInput struct {
	Interests []string `json:"interests"`
}

// ProgressResponse is returned after every step
type ProgressResponse struct {
	GUID string   `json:"guid"`
	Data FormData `json:"data"`
}
