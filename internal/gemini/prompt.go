package gemini

import "fmt"

// BuildPrompt renders the annotation instruction for one image. The model
// is asked for prefix/suffix description pairs as a raw JSON array.
func BuildPrompt(contextDesc string) string {
	return fmt.Sprintf(`Analyze this image in the context of: %s

Your task is to generate a comprehensive list of prefix-suffix pairs that describe different aspects of the image in great detail.
Each pair should focus on a specific element or feature of the image.

Guidelines for generating pairs:
1. Create at least 15-20 pairs
2. Each prefix should identify a specific element
3. Each suffix should provide detailed description about that element
4. Cover various aspects:
   - Overall layout and structure
   - Specific UI elements and their positions
   - Text content and language
   - Colors and visual design
   - Interactive elements
   - Spatial relationships between elements
   - State of UI elements (active, hover, selected)
   - Any unique or notable features
5. Be as specific and detailed as possible
6. Use technical terms when appropriate
7. Include measurements or proportions when relevant
8. Describe both major and minor details

Format your response as a JSON array of objects, each with "prefix" and "suffix" keys.
Example format:
[
  {"prefix": "The main navigation bar", "suffix": "spans the full width of the screen, featuring a dark blue (#1877F2) background with white text and includes Home, Pages, and Groups icons aligned to the left"},
  {"prefix": "The profile section", "suffix": "occupies approximately 20%% of the viewport width on the left side, displaying the user's profile picture, name, and customizable navigation options"}
]

Ensure each prefix-suffix pair is unique and provides valuable information about the image.`, contextDesc)
}
