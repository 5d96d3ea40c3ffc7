package styles

// Status indicators. Plain ASCII so forensic workstations without patched
// fonts render them.
const (
	IconSuccess = "[OK]"
	IconError   = "[X]"
	IconWarning = "[!]"
	IconInfo    = "[i]"
	IconBullet  = ">"
)
