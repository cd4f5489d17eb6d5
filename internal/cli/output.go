package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case Identity:
		o.printIdentity(v)
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case Player:
		o.printPlayer(v, nil)
	case PlayerResult:
		o.printPlayer(v.Player, v.Session.Drawn)
	case DrawResult:
		o.printDrawResult(v)
	case ClaimResult:
		o.printClaimResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	DisplayName string    `json:"display_name"`
	Contact     string    `json:"contact,omitempty"`
	AccessCode  string    `json:"access_code,omitempty"`
	Card        [5][5]int `json:"card"`
	Online      bool      `json:"online"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Session response type
type Session struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	State       string     `json:"state"`
	Active      bool       `json:"active"`
	Strategy    string     `json:"strategy"`
	Winner      *string    `json:"winner"`
	Drawn       []int      `json:"drawn"`
	LastBall    *int       `json:"last_ball"`
	Remaining   int        `json:"remaining"`
	Players     []Player   `json:"players"`
	Version     int64      `json:"version"`
}

// SessionSummary is a session listing entry
type SessionSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	PlayerCount int        `json:"player_count"`
	DrawnCount  int        `json:"drawn_count"`
	Active      bool       `json:"active"`
	Winner      *string    `json:"winner"`
}

// SessionList response type
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// PlayerResult response type
type PlayerResult struct {
	Player  Player  `json:"player"`
	Session Session `json:"session"`
}

// DrawResult response type
type DrawResult struct {
	Ball    int     `json:"ball"`
	Session Session `json:"session"`
}

// ClaimResult response type
type ClaimResult struct {
	Won     bool    `json:"won"`
	Session Session `json:"session"`
}

// Identity response type
type Identity struct {
	Role        string `json:"role"`
	AdminID     string `json:"admin_id,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	DisplayName string `json:"display_name"`
}

// AuthResult combines identity and token
type AuthResult struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

var columnLabels = [5]string{"B", "I", "N", "G", "O"}

// ballLabel renders a ball with its column letter, e.g. 47 as G47
func ballLabel(ball int) string {
	if ball < 1 {
		return "?"
	}
	col := (ball - 1) / 15
	if col > 4 {
		col = 4
	}
	return fmt.Sprintf("%s%d", columnLabels[col], ball)
}

func (o *Output) printIdentity(i Identity) {
	fmt.Printf("Role: %s\n", i.Role)
	fmt.Printf("Name: %s\n", i.DisplayName)
	if i.AdminID != "" {
		fmt.Printf("Admin: %s\n", i.AdminID)
	}
	if i.PlayerID != "" {
		fmt.Printf("Player: %s\n", i.PlayerID)
		fmt.Printf("Session: %s\n", i.SessionID)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printIdentity(a.Identity)
	fmt.Printf("Token: %s\n", a.Token)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s (%s)\n", s.Name, s.ID)
	if s.ScheduledAt != nil {
		fmt.Printf("Scheduled: %s\n", s.ScheduledAt.Format(time.RFC3339))
	}
	fmt.Printf("State: %s\n", s.State)
	fmt.Printf("Strategy: %s\n", s.Strategy)

	if s.LastBall != nil {
		fmt.Printf("Last Ball: %s\n", ballLabel(*s.LastBall))
	}
	fmt.Printf("Drawn (%d, %d remaining):", len(s.Drawn), s.Remaining)
	for _, b := range s.Drawn {
		fmt.Printf(" %d", b)
	}
	fmt.Println()

	if s.Winner != nil {
		fmt.Printf("Winner: %s\n", o.playerName(s, *s.Winner))
	}

	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		status := ""
		if p.Online {
			status = " [online]"
		}
		secret := ""
		if p.AccessCode != "" {
			secret = fmt.Sprintf(" code=%s contact=%s", p.AccessCode, p.Contact)
		}
		fmt.Printf("  - %s (%s)%s%s\n", p.DisplayName, p.ID, secret, status)
	}
}

func (o *Output) playerName(s Session, id string) string {
	for _, p := range s.Players {
		if p.ID == id {
			return fmt.Sprintf("%s (%s)", p.DisplayName, id)
		}
	}
	return id
}

func (o *Output) printSessionList(l SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Println("No sessions")
		return
	}
	for _, s := range l.Sessions {
		state := "idle"
		switch {
		case s.Winner != nil:
			state = "won"
		case !s.Active:
			state = "finished"
		case s.DrawnCount > 0:
			state = "active"
		}
		fmt.Printf("%s  %-24s players=%d drawn=%d %s\n", s.ID, s.Name, s.PlayerCount, s.DrawnCount, state)
	}
}

func (o *Output) printPlayer(p Player, drawn []int) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Session: %s\n", p.SessionID)
	if p.AccessCode != "" {
		fmt.Printf("Access Code: %s\n", p.AccessCode)
	}
	if p.Contact != "" {
		fmt.Printf("Contact: %s\n", p.Contact)
	}
	fmt.Println()
	o.printCard(p.Card, drawn)
}

// printCard renders a column-major card row by row. Drawn numbers are
// starred and the free cell is shown as FREE.
func (o *Output) printCard(card [5][5]int, drawn []int) {
	fmt.Println("  " + strings.Join(columnLabels[:], "     "))
	for row := 0; row < 5; row++ {
		cells := make([]string, 5)
		for col := 0; col < 5; col++ {
			v := card[col][row]
			switch {
			case v == 0:
				cells[col] = "FREE"
			case slices.Contains(drawn, v):
				cells[col] = fmt.Sprintf("%3d*", v)
			default:
				cells[col] = fmt.Sprintf("%3d ", v)
			}
		}
		fmt.Println(strings.Join(cells, "  "))
	}
}

func (o *Output) printDrawResult(d DrawResult) {
	fmt.Printf("Ball: %s\n", ballLabel(d.Ball))
	fmt.Printf("Drawn: %d, Remaining: %d\n", len(d.Session.Drawn), d.Session.Remaining)
	if !d.Session.Active {
		fmt.Println("Session finished")
	}
}

func (o *Output) printClaimResult(c ClaimResult) {
	if c.Won {
		fmt.Println("BINGO!")
		if c.Session.Winner != nil {
			fmt.Printf("Winner: %s\n", o.playerName(c.Session, *c.Session.Winner))
		}
		return
	}
	fmt.Println("Not a bingo yet")
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.Storage != "" {
		fmt.Printf("Storage: %s\n", h.Storage)
	}
}
