// Package seed loads the demo users and tickets the board starts with.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/issue-board/internal/domain"
)

//go:embed seed.yaml
var embedded []byte

// Fixture is a decoded seed file.
type Fixture struct {
	Users   []domain.User
	Tickets []domain.Ticket
}

type fileUser struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Avatar string `yaml:"avatar"`
}

type fileComment struct {
	ID        string `yaml:"id"`
	Author    string `yaml:"author"`
	Content   string `yaml:"content"`
	CreatedAt string `yaml:"created_at"`
}

type fileTicket struct {
	ID          string        `yaml:"id"`
	Key         string        `yaml:"key"`
	Summary     string        `yaml:"summary"`
	Description string        `yaml:"description"`
	Status      string        `yaml:"status"`
	Priority    string        `yaml:"priority"`
	Assignee    string        `yaml:"assignee"`
	Reporter    string        `yaml:"reporter"`
	Project     string        `yaml:"project"`
	IssueType   string        `yaml:"issue_type"`
	CreatedAt   string        `yaml:"created_at"`
	UpdatedAt   string        `yaml:"updated_at"`
	Comments    []fileComment `yaml:"comments"`
}

type file struct {
	Users   []fileUser   `yaml:"users"`
	Tickets []fileTicket `yaml:"tickets"`
}

// Load decodes the seed file at path, or the built-in fixture when path is empty.
func Load(path string) (*Fixture, error) {
	data := embedded
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes a YAML seed document. User references must resolve and enum
// values must be known.
func Parse(data []byte) (*Fixture, error) {
	var raw file
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	users := make(map[string]domain.User, len(raw.Users))
	fixture := &Fixture{}
	for _, u := range raw.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("seed user %q has no id", u.Name)
		}
		if _, dup := users[u.ID]; dup {
			return nil, fmt.Errorf("duplicate seed user %q", u.ID)
		}
		user := domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
		users[u.ID] = user
		fixture.Users = append(fixture.Users, user)
	}

	for _, t := range raw.Tickets {
		ticket, err := t.toDomain(users)
		if err != nil {
			return nil, fmt.Errorf("seed ticket %s: %w", t.Key, err)
		}
		fixture.Tickets = append(fixture.Tickets, ticket)
	}
	return fixture, nil
}

func (t fileTicket) toDomain(users map[string]domain.User) (domain.Ticket, error) {
	status, err := domain.ParseTicketStatus(t.Status)
	if err != nil {
		return domain.Ticket{}, err
	}
	priority, err := domain.ParseTicketPriority(t.Priority)
	if err != nil {
		return domain.Ticket{}, err
	}
	issueType, err := domain.ParseIssueType(t.IssueType)
	if err != nil {
		return domain.Ticket{}, err
	}
	reporter, ok := users[t.Reporter]
	if !ok {
		return domain.Ticket{}, fmt.Errorf("unknown reporter %q", t.Reporter)
	}
	createdAt, err := parseTime(t.CreatedAt)
	if err != nil {
		return domain.Ticket{}, err
	}
	updatedAt, err := parseTime(t.UpdatedAt)
	if err != nil {
		return domain.Ticket{}, err
	}

	ticket := domain.Ticket{
		ID:          t.ID,
		Key:         t.Key,
		Summary:     t.Summary,
		Description: t.Description,
		Status:      status,
		Priority:    priority,
		Reporter:    reporter,
		Project:     t.Project,
		IssueType:   issueType,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Comments:    make([]domain.Comment, 0, len(t.Comments)),
	}
	if t.Assignee != "" {
		assignee, ok := users[t.Assignee]
		if !ok {
			return domain.Ticket{}, fmt.Errorf("unknown assignee %q", t.Assignee)
		}
		ticket.Assignee = &assignee
	}
	for _, c := range t.Comments {
		author, ok := users[c.Author]
		if !ok {
			return domain.Ticket{}, fmt.Errorf("comment %s: unknown author %q", c.ID, c.Author)
		}
		createdAt, err := parseTime(c.CreatedAt)
		if err != nil {
			return domain.Ticket{}, fmt.Errorf("comment %s: %w", c.ID, err)
		}
		ticket.Comments = append(ticket.Comments, domain.Comment{
			ID:        c.ID,
			Author:    author,
			Content:   c.Content,
			CreatedAt: createdAt,
		})
	}
	return ticket, nil
}

func parseTime(val string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", val, err)
	}
	return t, nil
}
