package store

import "agendapro-backend/models"

type DashboardStats struct {
	TotalAppointments int     `json:"total_appointments"`
	Confirmed         int     `json:"confirmed"`
	Pending           int     `json:"pending"`
	NoShow            int     `json:"no_show"`
	Revenue           float64 `json:"revenue"`
}

// ProjectStats aggregates the appointments dated today. Revenue sums the
// price of paid appointments regardless of their status.
func ProjectStats(appointments []models.Appointment, today models.Date) DashboardStats {
	var stats DashboardStats
	for _, a := range appointments {
		if a.Date != today {
			continue
		}
		stats.TotalAppointments++
		switch a.Status {
		case models.StatusConfirmed:
			stats.Confirmed++
		case models.StatusPending:
			stats.Pending++
		case models.StatusNoShow:
			stats.NoShow++
		}
		if a.PaymentStatus == models.PaymentPaid {
			stats.Revenue += a.Price
		}
	}
	return stats
}
