package geminiservice

import "fmt"

// This file stores the prompts sent to Gemini.

// CoachSystemPrompt defines the model's role.
const CoachSystemPrompt = `You are a friendly AI fitness coach.
Your tone is positive, energetic and encouraging.
Answer with the script text only, without headings or stage directions.`

// motivationalTemplate wraps the weekly plan markdown (%s).
const motivationalTemplate = `
You are a friendly AI fitness coach. Read the following user info and weekly plan.
Write a short, motivational podcast-style script telling them to follow this plan.
Keep it positive, energetic, and under 2 minutes when read aloud.

User plan:

%s
`

// MotivationalPrompt builds the user prompt for a weekly plan.
func MotivationalPrompt(weeklyPlan string) string {
	return fmt.Sprintf(motivationalTemplate, weeklyPlan)
}
