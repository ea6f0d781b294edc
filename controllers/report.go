// controllers/report.go
package controllers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"agendapro-backend/models"
	"agendapro-backend/utils"
)

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64          `json:"currentMonthRevenue"`
	MonthGrowth           float64          `json:"monthGrowth"`
	CurrentQuarterRevenue float64          `json:"currentQuarterRevenue"`
	QuarterGrowth         float64          `json:"quarterGrowth"`
	CurrentYearRevenue    float64          `json:"currentYearRevenue"`
	YearGrowth            float64          `json:"yearGrowth"`
	TopServices           []ServiceSummary `json:"topServices"`
	TopClients            []ClientSummary  `json:"topClients"`
	QuickStats            QuickStatistics  `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ClientSummary struct {
	Name   string  `json:"name"`
	Visits int     `json:"visits"`
	Spent  float64 `json:"spent"`
}

type QuickStatistics struct {
	TotalClients      int     `json:"totalClients"`
	TotalAppointments int     `json:"totalAppointments"`
	AvgMonthlyVisits  float64 `json:"avgMonthlyVisits"`
	AvgTicket         float64 `json:"avgTicket"`
}

const topLimit = 5

// GetReportAnalytics returns revenue by period plus top services and clients.
func (h *Handler) GetReportAnalytics(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.LoadDashboard(c.Request.Context()); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	today := h.today()
	c.JSON(http.StatusOK, buildAnalytics(sess.Appointments.Snapshot(), len(sess.Clients.Snapshot()), today))
}

type period struct{ start, end models.Date }

func (p period) contains(d models.Date) bool {
	t := d.Time()
	return !t.Before(p.start.Time()) && !t.After(p.end.Time())
}

func monthPeriod(d models.Date) period {
	first, last := utils.MonthRange(d)
	return period{first, last}
}

func quarterPeriod(d models.Date) period {
	startMonth := time.Month((int(d.Month)-1)/3*3 + 1)
	start := models.NewDate(d.Year, startMonth, 1)
	return period{start, models.DateOf(start.Time().AddDate(0, 3, -1))}
}

func yearPeriod(d models.Date) period {
	return period{models.NewDate(d.Year, time.January, 1), models.NewDate(d.Year, time.December, 31)}
}

func (p period) previous(of func(models.Date) period) period {
	return of(p.start.AddDays(-1))
}

func revenue(appointments []models.Appointment, p period) float64 {
	var total float64
	for _, a := range appointments {
		if a.PaymentStatus == models.PaymentPaid && p.contains(a.Date) {
			total += a.Price
		}
	}
	return total
}

func growth(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func buildAnalytics(appointments []models.Appointment, totalClients int, today models.Date) AnalyticsSummary {
	var out AnalyticsSummary

	month := monthPeriod(today)
	out.CurrentMonthRevenue = revenue(appointments, month)
	out.MonthGrowth = growth(out.CurrentMonthRevenue, revenue(appointments, month.previous(monthPeriod)))

	quarter := quarterPeriod(today)
	out.CurrentQuarterRevenue = revenue(appointments, quarter)
	out.QuarterGrowth = growth(out.CurrentQuarterRevenue, revenue(appointments, quarter.previous(quarterPeriod)))

	year := yearPeriod(today)
	out.CurrentYearRevenue = revenue(appointments, year)
	out.YearGrowth = growth(out.CurrentYearRevenue, revenue(appointments, year.previous(yearPeriod)))

	services := map[string]*ServiceSummary{}
	clients := map[string]*ClientSummary{}
	var visits int
	var paid float64
	var paidCount int
	first := today
	for _, a := range appointments {
		if a.Date.Time().Before(first.Time()) {
			first = a.Date
		}
		if a.Status == models.StatusCompleted {
			visits++
		}
		if a.PaymentStatus != models.PaymentPaid {
			continue
		}
		paid += a.Price
		paidCount++

		s, ok := services[a.ServiceName]
		if !ok {
			s = &ServiceSummary{Name: a.ServiceName}
			services[a.ServiceName] = s
		}
		s.Count++
		s.Revenue += a.Price

		cs, ok := clients[a.ClientID.String()]
		if !ok {
			cs = &ClientSummary{Name: a.ClientName}
			clients[a.ClientID.String()] = cs
		}
		cs.Visits++
		cs.Spent += a.Price
	}

	out.TopServices = []ServiceSummary{}
	for _, s := range services {
		out.TopServices = append(out.TopServices, *s)
	}
	sort.Slice(out.TopServices, func(i, j int) bool {
		if out.TopServices[i].Revenue != out.TopServices[j].Revenue {
			return out.TopServices[i].Revenue > out.TopServices[j].Revenue
		}
		return out.TopServices[i].Name < out.TopServices[j].Name
	})
	if len(out.TopServices) > topLimit {
		out.TopServices = out.TopServices[:topLimit]
	}

	out.TopClients = []ClientSummary{}
	for _, cs := range clients {
		out.TopClients = append(out.TopClients, *cs)
	}
	sort.Slice(out.TopClients, func(i, j int) bool {
		if out.TopClients[i].Spent != out.TopClients[j].Spent {
			return out.TopClients[i].Spent > out.TopClients[j].Spent
		}
		return out.TopClients[i].Name < out.TopClients[j].Name
	})
	if len(out.TopClients) > topLimit {
		out.TopClients = out.TopClients[:topLimit]
	}

	months := utils.DaysBetween(first, today)/30 + 1
	out.QuickStats = QuickStatistics{
		TotalClients:      totalClients,
		TotalAppointments: len(appointments),
		AvgMonthlyVisits:  float64(visits) / float64(months),
	}
	if paidCount > 0 {
		out.QuickStats.AvgTicket = paid / float64(paidCount)
	}
	return out
}
