package fakeapi

import "fmt"

const (
	SeedUsername = "engineer"
	SeedPassword = "fieldsync"
)

// Seed installs a demo engineer and a handful of tickets covering every
// status, for the mock-server command.
func (s *Server) Seed() error {
	if err := s.AddUser(SeedUsername, SeedPassword, "field_engineer", "engineer@fieldsync.local"); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	s.SetTasks(SeedUsername, []map[string]any{
		{
			"id": "101", "ticketNumber": "FS-2401", "title": "Replace router at branch office",
			"description": "Customer reports **intermittent** connectivity.\n\n- swap the edge router\n- verify VPN tunnel",
			"status": "pending", "priority": "high", "issueType": "Network",
			"customer": map[string]any{
				"name": "Hoshino Clinic", "city": "Osaka", "address": "2-3-1 Umeda",
				"phone": "06-1234-5678", "email": "it@hoshino.example",
			},
			"createdAt": "2025-03-02T09:15:00Z", "updatedAt": "2025-03-02T09:15:00Z",
		},
		{
			"id": "102", "ticketNumber": "FS-2402", "title": "Printer driver rollout",
			"status": "In_Progress", "priority": "normal", "issueType": "Hardware",
			"customer": map[string]any{"name": "Kita Logistics", "city": "Kobe"},
			"createdAt": "2025-03-03T13:40:00Z",
		},
		{
			"id": "103", "ticketNumber": "FS-2403", "title": "Quarterly backup audit",
			"status": "completed", "priority": "low", "issueType": "Maintenance",
			"customer": map[string]any{"name": "Minato Dental"},
			"createdAt": "2025-02-20T08:00:00Z", "updatedAt": "2025-02-28T17:30:00Z",
		},
		{
			"id": "104", "ticketNumber": "FS-2404", "title": "Decommission old NAS",
			"status": "cancelled", "priority": "normal",
			"createdAt": "2025-02-25T10:00:00Z",
		},
		{
			"id": "105", "title": "Site survey",
			"status": "on_hold",
			"createdAt": "2025-03-05T11:20:00Z",
		},
	})
	return nil
}
