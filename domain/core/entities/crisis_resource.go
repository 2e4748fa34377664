package entities

// CrisisResource is an always-available emergency contact
type CrisisResource struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// CrisisResources returns the fixed emergency list shown next to high
// severity flags and on the safety plan
func CrisisResources() []CrisisResource {
	return []CrisisResource{
		{
			Name:        "988 Suicide & Crisis Lifeline",
			Contact:     "Call or text 988",
			Description: "24/7 crisis support",
		},
		{
			Name:        "Crisis Text Line",
			Contact:     "Text HOME to 741741",
			Description: "24/7 text support",
		},
		{
			Name:        "International Association for Suicide Prevention",
			Contact:     "https://www.iasp.info/resources/Crisis_Centres/",
			Description: "Global crisis centers",
			URL:         "https://www.iasp.info/resources/Crisis_Centres/",
		},
	}
}
