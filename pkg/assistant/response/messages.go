package response

// Canned strings for the paths that must answer without a model: greetings,
// deflections, and the degraded mode where generation failed but retrieval
// did not.
const (
	MsgGreeting = "Welcome to Maison Lumière! I can help you find watches, perfume and jewelry, or answer questions about our store. What are you looking for today?"

	MsgNoResults = "I couldn't find anything in our catalog matching that. Could you tell me a little more about what you're looking for, for example the occasion or a price range?"

	MsgOrderTracking = "I can't look into individual orders from here. Your confirmation email has a tracking link, and our support team at support@maisonlumiere.example can check the status for you."

	MsgGenerationFailed = "Sorry, something went wrong while writing my answer."

	MsgFallbackIntro = "Here is what I found in our catalog:"
)
