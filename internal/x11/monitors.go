package x11

import (
	"fmt"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds geom.Rect
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: geom.Rect{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}

	return monitors, nil
}

// WorkArea returns the usable area of the monitor under the pointer, with
// dock struts (or the EWMH work area) subtracted.
func (c *Connection) WorkArea() (geom.Rect, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return geom.Rect{}, err
	}
	if len(monitors) == 0 {
		return geom.Rect{}, fmt.Errorf("no monitors found")
	}

	mon := monitors[0]
	if p, ok := c.pointer(); ok {
		for _, m := range monitors {
			if m.Bounds.Contains(p) {
				mon = m
				break
			}
		}
	}

	if area, ok := c.subtractDockStruts(mon.Bounds); ok {
		return area, nil
	}
	if area, ok := c.ewmhWorkArea(mon.Bounds); ok {
		return area, nil
	}
	return mon.Bounds, nil
}

func (c *Connection) pointer() (geom.Point, bool) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geom.Point{}, false
	}
	return geom.Point{X: int(reply.RootX), Y: int(reply.RootY)}, true
}

func (c *Connection) rootSize() (geom.Size, bool) {
	reply, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geom.Size{}, false
	}
	return geom.Size{W: int(reply.Width), H: int(reply.Height)}, true
}

func (c *Connection) ewmhWorkArea(mon geom.Rect) (geom.Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return geom.Rect{}, false
	}
	idx := 0
	if desk, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desk) < len(areas) {
		idx = int(desk)
	}
	wa := areas[idx]
	area, ok := intersect(mon, geom.Rect{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)})
	return area, ok
}

// struts is the space reserved by docks on each side of a monitor.
type struts struct {
	left, right, top, bottom int
}

func (s struts) empty() bool {
	return s.left == 0 && s.right == 0 && s.top == 0 && s.bottom == 0
}

func (c *Connection) subtractDockStruts(mon geom.Rect) (geom.Rect, bool) {
	root, ok := c.rootSize()
	if !ok {
		return geom.Rect{}, false
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return geom.Rect{}, false
	}

	var acc struts
	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			acc = accumulate(acc, mon, root, sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT.
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			acc = accumulate(acc, mon, root, &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(root.H - 1), RightEndY: uint(root.H - 1),
				TopEndX: uint(root.W - 1), BottomEndX: uint(root.W - 1),
			})
		}
	}
	if acc.empty() {
		return geom.Rect{}, false
	}

	return geom.Rect{
		X:      mon.X + acc.left,
		Y:      mon.Y + acc.top,
		Width:  max(1, mon.Width-acc.left-acc.right),
		Height: max(1, mon.Height-acc.top-acc.bottom),
	}, true
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// accumulate folds one dock's reserved strips into acc, counting only the
// part that overlaps mon.
func accumulate(acc struts, mon geom.Rect, root geom.Size, sp *ewmh.WmStrutPartial) struts {
	if sp.Top > 0 {
		strip := geom.Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top)}
		if r, ok := intersect(mon, strip); ok {
			acc.top = max(acc.top, r.Height)
		}
	}
	if sp.Bottom > 0 {
		strip := geom.Rect{X: int(sp.BottomStartX), Y: root.H - int(sp.Bottom), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom)}
		if r, ok := intersect(mon, strip); ok {
			acc.bottom = max(acc.bottom, r.Height)
		}
	}
	if sp.Left > 0 {
		strip := geom.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1}
		if r, ok := intersect(mon, strip); ok {
			acc.left = max(acc.left, r.Width)
		}
	}
	if sp.Right > 0 {
		strip := geom.Rect{X: root.W - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1}
		if r, ok := intersect(mon, strip); ok {
			acc.right = max(acc.right, r.Width)
		}
	}
	return acc
}

// intersect returns the overlap of a and b, if any.
func intersect(a, b geom.Rect) (geom.Rect, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.Right(), b.Right())
	y2 := min(a.Bottom(), b.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return geom.Rect{}, false
	}
	return geom.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}
