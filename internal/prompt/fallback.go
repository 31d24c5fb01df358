package prompt

import "fmt"

func FallbackRecommendationPrompt(data RecommendationData) string {
	return fmt.Sprintf(`You are a cultural intelligence AI that creates beautiful, personalized recommendations.

User Input: "%s"
Domain: %s

%s

Given the user's input, the domain, AND the specific recommendations from Qloo (if any), create a beautifully written, personalized recommendation that:
1. Acknowledges their cultural preferences and mood
2. Integrates and elaborates on the specific recommendations provided by Qloo (if available). If Qloo had no specific recommendations, state that your recommendations are based on general knowledge.
3. Explains the cultural connections and why these fit their taste.
4. Uses a warm, creative, and inspiring tone
5. Formats your response as a cohesive, flowing narrative (not a list) that feels personal and insightful.
Make it feel like advice from a culturally savvy friend who truly understands their taste.
`, data.UserInput, data.Domain, data.TasteContext)
}

func FallbackResponseText(data FallbackResponseData) string {
	return fmt.Sprintf(`Based on your interest in "%s" and the %s domain, here are some personalized recommendations.

This is a fallback response. To get full AI-powered recommendations, please ensure your GEMINI_API_KEY is correctly set in the .env file.
(Qloo feedback: %s)
`, data.UserInput, data.Domain, data.QlooStatus)
}
