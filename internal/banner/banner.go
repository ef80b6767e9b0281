package banner

import (
	"github.com/charmbracelet/lipgloss"

	"solrbench/internal/tui/styles"
)

const ascii = `
   _____       __     ____                  __  
  / ___/____  / /____/ __ )___  ____  _____/ /_ 
  \__ \/ __ \/ / ___/ __  / _ \/ __ \/ ___/ __ \
 ___/ / /_/ / / /  / /_/ /  __/ / / / /__/ / / /
/____/\____/_/_/  /_____/\___/_/ /_/\___/_/ /_/ `

// GetString renders the help banner with the current terminal profile.
func GetString() string {
	style := lipgloss.DefaultRenderer().NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	return "\n" + style.Render(ascii) + "\n" + styles.Subtle.Render("  closed-loop search benchmark") + "\n"
}
