package client

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ingmarrr/ws-chat/internal/proto"
)

type printer struct {
	out    io.Writer
	self   string
	own    *color.Color
	peer   *color.Color
	notice *color.Color
	alert  *color.Color
}

func newPrinter(out io.Writer, self string, colored bool) *printer {
	p := &printer{
		out:    out,
		self:   self,
		own:    color.New(color.FgGreen, color.Bold),
		peer:   color.New(color.FgCyan, color.Bold),
		notice: color.New(color.Faint),
		alert:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.own, p.peer, p.notice, p.alert} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) print(f proto.Frame) {
	switch f.Kind {
	case proto.FrameMessage:
		who := p.peer
		if f.User == p.self {
			who = p.own
		}
		fmt.Fprintf(p.out, "%s :: %s\n", who.Sprint(f.User), f.Text)
	case proto.FrameJoined:
		p.notice.Fprintf(p.out, "* %s\n", proto.Joined(f.User))
	case proto.FrameLeft:
		p.notice.Fprintf(p.out, "* %s\n", proto.Left(f.User))
	case proto.FrameRejected:
		p.alert.Fprintln(p.out, proto.RejectionNotice)
	default:
		fmt.Fprintln(p.out, f.Text)
	}
}
