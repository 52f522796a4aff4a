package shell

// Achievement names a one-off milestone.
type Achievement string

const (
	AchievementExplorer    Achievement = "explorer"
	AchievementMultitasker Achievement = "multitasker"
)

// ExplorerRoutes must all have been focused to unlock the explorer
// achievement.
var ExplorerRoutes = []string{"/about", "/projects", "/writing", "/resume", "/impact", "/contact", "/terminal"}

// MultitaskerWindows is the window count that triggers the multitasker toast.
const MultitaskerWindows = 5

const (
	explorerToast    = "Explorer Achievement Unlocked! You visited every app!"
	multitaskerToast = "Multitasker Achievement! 5+ windows open!"
)

type progress struct {
	visited     map[string]struct{}
	explorer    bool
	multitasker bool
}

func (p progress) unlocked() []Achievement {
	var out []Achievement
	if p.explorer {
		out = append(out, AchievementExplorer)
	}
	if p.multitasker {
		out = append(out, AchievementMultitasker)
	}
	return out
}

// checkAchievements records the focused route and fires achievement toasts.
// Explorer fires once per session; multitasker fires on every change of the
// window count that leaves MultitaskerWindows or more open.
func (d *Desktop) checkAchievements() {
	if id := d.reg.FocusedID(); id != "" {
		if w, ok := d.reg.Lookup(id); ok {
			if d.progress.visited == nil {
				d.progress.visited = make(map[string]struct{})
			}
			d.progress.visited[w.Route] = struct{}{}
		}
	}

	if !d.progress.explorer && d.visitedAll() {
		d.progress.explorer = true
		d.logger.Info("achievement unlocked", "achievement", AchievementExplorer)
		d.showToast(explorerToast)
	}

	count := d.reg.Len()
	if count != d.lastCount {
		d.lastCount = count
		if count >= MultitaskerWindows {
			d.progress.multitasker = true
			d.showToast(multitaskerToast)
		}
	}
}

func (d *Desktop) visitedAll() bool {
	for _, route := range ExplorerRoutes {
		if _, ok := d.progress.visited[route]; !ok {
			return false
		}
	}
	return true
}
