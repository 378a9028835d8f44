package embedded

import (
	_ "embed"
)

// Composer style profile table
//
//go:embed data/style_profiles.yaml
var StyleProfilesYAML []byte

// Guidance prompts
//
//go:embed data/prompts/guidance_system_prompt.txt
var GuidanceSystemPromptTxt []byte

//go:embed data/prompts/guidance_user_prompt.txt
var GuidanceUserPromptTxt []byte
