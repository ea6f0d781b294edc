package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"agendapro-backend/models"
	"agendapro-backend/store"
	"agendapro-backend/utils"
)

type DashboardOverview struct {
	Date                 models.Date          `json:"date"`
	Stats                store.DashboardStats `json:"stats"`
	TodayAppointments    []models.Appointment `json:"todayAppointments"`
	UpcomingAppointments []models.Appointment `json:"upcomingAppointments"`
	TotalClients         int                  `json:"totalClients"`
	TotalServices        int                  `json:"totalServices"`
}

const upcomingLimit = 5

// GetDashboardOverview loads the salon's appointments, services and clients
// and returns today's stats.
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.LoadDashboard(c.Request.Context()); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	today := h.today()
	c.JSON(http.StatusOK, DashboardOverview{
		Date:                 today,
		Stats:                sess.Stats(today),
		TodayAppointments:    sess.Appointments.QueryByDate(today),
		UpcomingAppointments: upcoming(sess.Appointments.Snapshot(), today, upcomingLimit),
		TotalClients:         len(sess.Clients.Snapshot()),
		TotalServices:        len(sess.Services.Snapshot()),
	})
}

// upcoming returns the next open appointments after today, soonest first.
func upcoming(appointments []models.Appointment, today models.Date, limit int) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range appointments {
		if !a.Date.Time().After(today.Time()) || a.Status.Terminal() {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Time().Before(out[j].Date.Time())
		}
		return out[i].Time < out[j].Time
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
