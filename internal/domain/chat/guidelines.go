package chat

type GuidelinesText struct {
	Title        string
	Rules        []string
	Consequences []string
}

// StudyGuidelines returns the rules participants agree to.
func StudyGuidelines() GuidelinesText {
	return GuidelinesText{
		Title: "SkillSwap Study Chat Guidelines",
		Rules: []string{
			"Be respectful and professional at all times",
			"Focus on educational content and skill sharing",
			"No harassment, bullying, or inappropriate behavior",
			"No sharing of personal information beyond what's necessary",
			"No spam or promotional content",
			"Report any violations immediately",
			"Keep discussions relevant to the agreed skill swap",
			"Use appropriate language and avoid profanity",
			"Be punctual for scheduled study sessions",
			"Provide constructive feedback and support",
		},
		Consequences: []string{
			"First violation: Warning",
			"Second violation: Temporary chat suspension",
			"Third violation: Permanent chat ban",
			"Severe violations: Immediate account suspension",
		},
	}
}
