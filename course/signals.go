package course

import "github.com/tsinghua-fib-lab/course-navigator/entity"

// SignalPass 超车转向灯
func (c *Course) SignalPass() {
	c.TurnSignalOn(c.passingLeft)
}

// SignalPassReturn 超车后返回原车道的转向灯
func (c *Course) SignalPassReturn() {
	c.TurnSignalOn(!c.passingLeft)
}

// SignalForDirection 按方向设置转向灯，直行时关闭
func (c *Course) SignalForDirection(d entity.Direction) {
	if d == entity.Straight {
		c.TurnSignalsOff()
	} else {
		c.TurnSignalOn(d == entity.Left)
	}
}

// TurnSignalOn 打开一侧转向灯，left为true时为左侧
func (c *Course) TurnSignalOn(left bool) {
	if c.nav.SignalLeft != left || c.nav.SignalRight != !left {
		c.nav.SignalLeft = left
		c.nav.SignalRight = !left
		c.obs.Trace("signalling", Fields{"left": left})
	}
}

// TurnSignalsOff 关闭转向灯
func (c *Course) TurnSignalsOff() {
	if c.nav.SignalLeft || c.nav.SignalRight {
		c.nav.SignalLeft = false
		c.nav.SignalRight = false
		c.obs.Trace("setting turn signals off", nil)
	}
}

// TurnSignalsBothOn 已有转向灯亮起时改为双闪
func (c *Course) TurnSignalsBothOn() {
	if c.nav.SignalLeft || c.nav.SignalRight {
		c.nav.SignalLeft = true
		c.nav.SignalRight = true
		c.obs.Trace("setting both turn signals on", nil)
	}
}
