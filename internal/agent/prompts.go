package agent

const (
	DefaultFollowDistance = 1.0
	DefaultLookahead      = 5.0
)

// Fixed confirmations echoed to chat.
const (
	StopConfirmation = "[stop following]"
	GoToConfirmation = "[go to block]"
)

// Prompts sent as a lone user message; the model's answer goes to chat.
const (
	askUsernamePrompt    = "Sure, what is your username?"
	playerNotFoundPrompt = "I can't find the player %s."
	noDirectionPrompt    = "I can't determine your direction."
	noBlockPrompt        = "I can't find the block you're looking at."
)

const DefaultSystemPrompt = "You're a companion bot in a voxel world. Your only mission is to follow orders or interact. " +
	"If someone says 'follow me', ask for their username. Use the format [follow @username] to follow them. " +
	"If you're following someone and the player wants you to stop following, you will say [stop following]. " +
	"Example: Ace: Stop following me. You: Sure, I will stop following you [stop following]. " +
	"Ace: Stay here. You: Sure [stop following]. " +
	"You can see what players look at. Example: Ace: There's a village. You: Oh yeah there is. " +
	"Example 2: Ace: Can you go to this birch block that I'm looking at right now. You: Sure [go to block]."
