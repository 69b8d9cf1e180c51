package webui

import "strings"

// CallbackName is the page-side function that receives native messages.
const CallbackName = "__onPluginMessage"

var scriptEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// DeliveryScript wraps a JSON message in the script that hands it to the page.
// The message is embedded as a single-quoted literal that decodes back to the
// exact input text.
func DeliveryScript(message string) string {
	return "if(window." + CallbackName + ") window." + CallbackName + "('" + scriptEscaper.Replace(message) + "');"
}
