/*
demo.go - Demo timesheets for testing and demonstrations

PURPOSE:
  Canned sets of shifts that replace the table contents so pay screens can
  be shown without typing a fortnight of entries.

AVAILABLE DEMOS:
  regular-weeks:   Mon-Fri 08:00-16:00, no overtime
  overtime-heavy:  Six 10-hour days a week with site bonuses and meals
  night-shifts:    Overnight 22:00-06:00 shifts crossing midnight

HOW DEMOS WORK:
  1. Delete every shift
  2. Build shifts for the period containing "today" and the one before it
  3. Store them in one transaction

NOTE:
  Loading a demo DESTROYS the current timesheet.
*/
package timesheet

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amauryrb/hwtimesheet/payroll"
)

// Demo describes a canned timesheet.
type Demo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// dayPlan is one shift template applied to a weekday.
type dayPlan struct {
	start, end string
	perDiem    payroll.PerDiem
	bonus      bool
}

type demoDef struct {
	Demo
	plan map[time.Weekday]dayPlan
}

var demos = []demoDef{
	{
		Demo: Demo{ID: "regular-weeks", Name: "Regular Weeks", Description: "Five 8-hour days a week, no overtime"},
		plan: weekdays(dayPlan{start: "08:00", end: "16:00", perDiem: payroll.PerDiemNone}),
	},
	{
		Demo: Demo{ID: "overtime-heavy", Name: "Overtime Heavy", Description: "Six 10-hour days a week with site bonuses and meals"},
		plan: func() map[time.Weekday]dayPlan {
			p := weekdays(dayPlan{start: "07:00", end: "17:00", perDiem: payroll.PerDiemBreakfastLunch, bonus: true})
			p[time.Saturday] = dayPlan{start: "07:00", end: "17:00", perDiem: payroll.PerDiemLunchDinner}
			return p
		}(),
	},
	{
		Demo: Demo{ID: "night-shifts", Name: "Night Shifts", Description: "Overnight 22:00-06:00 shifts crossing midnight"},
		plan: map[time.Weekday]dayPlan{
			time.Sunday:    {start: "22:00", end: "06:00", perDiem: payroll.PerDiemDinner},
			time.Monday:    {start: "22:00", end: "06:00", perDiem: payroll.PerDiemDinner},
			time.Tuesday:   {start: "22:00", end: "06:00", perDiem: payroll.PerDiemDinner},
			time.Wednesday: {start: "22:00", end: "06:00", perDiem: payroll.PerDiemDinner, bonus: true},
			time.Thursday:  {start: "22:00", end: "06:00", perDiem: payroll.PerDiemDinner},
		},
	},
}

func weekdays(p dayPlan) map[time.Weekday]dayPlan {
	m := make(map[time.Weekday]dayPlan, 5)
	for d := time.Monday; d <= time.Friday; d++ {
		m[d] = p
	}
	return m
}

// Demos lists the available demo timesheets.
func Demos() []Demo {
	out := make([]Demo, len(demos))
	for i, d := range demos {
		out[i] = d.Demo
	}
	return out
}

// DemoShifts builds the shifts of demo id for the current and previous
// period around today.
func DemoShifts(id string, today time.Time) ([]payroll.Shift, error) {
	var def *demoDef
	for i := range demos {
		if demos[i].ID == id {
			def = &demos[i]
		}
	}
	if def == nil {
		return nil, &payroll.ValidationError{Field: "demo", Message: fmt.Sprintf("unknown demo %q", id)}
	}

	current, previous := payroll.CurrentAndPrevious(today)
	var shifts []payroll.Shift
	for _, p := range []payroll.PayPeriod{previous, current} {
		for _, d := range p.Days() {
			plan, ok := def.plan[d.Weekday()]
			if !ok {
				continue
			}
			shifts = append(shifts, payroll.Shift{
				Date:      d,
				StartTime: plan.start,
				EndTime:   plan.end,
				PerDiem:   plan.perDiem,
				SiteBonus: plan.bonus,
			})
		}
	}
	return shifts, nil
}

// LoadDemo replaces every stored shift with demo id.
func (s *Service) LoadDemo(ctx context.Context, id string) ([]payroll.Shift, error) {
	shifts, err := DemoShifts(id, s.Today())
	if err != nil {
		return nil, err
	}

	removed, err := s.store.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("failed to clear shifts for demo", zap.String("demo", id), zap.Error(err))
		return nil, err
	}
	ids, err := s.store.CreateBatch(ctx, shifts)
	if err != nil {
		s.logger.Error("failed to load demo", zap.String("demo", id), zap.Error(err))
		return nil, err
	}
	for i := range shifts {
		shifts[i].ID = ids[i]
	}

	s.logger.Info("demo loaded",
		zap.String("demo", id),
		zap.Int64("replaced", removed),
		zap.Int("shifts", len(shifts)))
	return shifts, nil
}
