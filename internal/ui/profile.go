package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/png"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/danhigham/telegrame/internal/account"
	"github.com/danhigham/telegrame/internal/domain"
)

// avatarCells is the rendered avatar width in terminal columns.
const avatarCells = 16

// ProfileModel shows one directory record and its picture. Each open
// fetches with its own context, cancelled when the scene closes.
type ProfileModel struct {
	user    domain.User
	image   []byte
	loading bool
	cancel  context.CancelFunc
	width   int
	height  int
}

func NewProfileModel() ProfileModel {
	return ProfileModel{}
}

func (m ProfileModel) SetSize(w, h int) ProfileModel {
	m.width = w
	m.height = h
	return m
}

// Open starts loading user's picture and returns the load function to run
// as a command.
func (m ProfileModel) Open(ctx context.Context, accounts Accounts, user domain.User) (ProfileModel, func() profileLoadedMsg) {
	m = m.Close()
	loadCtx, cancel := context.WithCancel(ctx)
	m.user = user
	m.image = nil
	m.loading = true
	m.cancel = cancel
	return m, func() profileLoadedMsg {
		p, err := accounts.LoadUser(loadCtx, user)
		return profileLoadedMsg{userID: user.ID, profile: p, err: err}
	}
}

// Close cancels a running load.
func (m ProfileModel) Close() ProfileModel {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.loading = false
	return m
}

// Loaded applies a finished load. Results for another user or a cancelled
// load are dropped. The returned text is an error to show, if any.
func (m ProfileModel) Loaded(msg profileLoadedMsg) (ProfileModel, string) {
	if msg.userID != m.user.ID || errors.Is(msg.err, context.Canceled) {
		return m, ""
	}
	m.loading = false
	if msg.err != nil {
		return m, account.Message(msg.err)
	}
	m.image = msg.profile.Image
	return m, ""
}

func (m ProfileModel) View() string {
	pic := subtleStyle.Render("loading picture...")
	if !m.loading {
		pic = renderAvatar(m.image, avatarCells, m.user.DisplayName)
	}

	rows := []string{
		pic,
		"",
		titleStyle.Render(m.user.DisplayName),
		"",
		labelStyle.Render("email") + "     " + m.user.Email,
		labelStyle.Render("username") + "  @" + m.user.Username,
		"",
		subtleStyle.Render("esc back"),
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, rows...))
}

// renderAvatar draws a PNG with half-block characters, two pixel rows per
// line. Missing or undecodable images fall back to the initial.
func renderAvatar(data []byte, cells int, name string) string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if len(data) == 0 || err != nil {
		return titleStyle.Render("( " + account.Initial(name) + " )")
	}

	b := img.Bounds()
	scale := float64(b.Dx()) / float64(cells)
	rows := int(float64(b.Dy()) / scale / 2)

	var out strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cells; c++ {
			x := b.Min.X + int(float64(c)*scale)
			top := img.At(x, b.Min.Y+int(float64(2*r)*scale))
			bottom := img.At(x, b.Min.Y+int(float64(2*r+1)*scale))
			out.WriteString(halfBlock(top, bottom))
		}
		if r < rows-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

func halfBlock(top, bottom color.Color) string {
	_, _, _, ta := top.RGBA()
	_, _, _, ba := bottom.RGBA()
	switch {
	case ta == 0 && ba == 0:
		return " "
	case ta == 0:
		return lipgloss.NewStyle().Foreground(bottom).Render("▄")
	case ba == 0:
		return lipgloss.NewStyle().Foreground(top).Render("▀")
	default:
		return lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀")
	}
}
