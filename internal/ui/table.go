package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MembersView renders a room's members in join order. The room id (its
// creator) and self are labelled.
func MembersView(roomID, self string, members []string) string {
	if len(members) == 0 {
		return MutedStyle.Render("No members")
	}

	rows := make([][]string, 0, len(members))
	for i, id := range members {
		var role string
		switch {
		case id == roomID && id == self:
			role = "host (you)"
		case id == roomID:
			role = "host"
		case id == self:
			role = "you"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), id, role})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("#", "Peer", "Role").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	return tbl.Render()
}

func RenderMembers(roomID, self string, members []string) {
	fmt.Println(MembersView(roomID, self, members))
}

// RoomView is the box shown to a host with the code others join with.
func RoomView(roomID, serverURL string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Success).
		Padding(1, 2)

	content := fmt.Sprintf("%s Room Created!\n\n%s Room code:  %s\n%s Server:     %s",
		IconSuccess,
		IconCopy, BoldStyle.Foreground(Primary).Render(roomID),
		IconRoom, MutedStyle.Render(serverURL),
	)

	return boxStyle.Render(content)
}

func RenderRoom(roomID, serverURL string) {
	fmt.Println(RoomView(roomID, serverURL))
}
