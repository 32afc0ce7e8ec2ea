// Package maintenance содержит расчёты, не зависящие от хранилища:
// сроки профилактики, пополнение склада и показатели надёжности.
package maintenance

import (
	"fmt"
	"math"
	"time"

	apperrors "cmms-system/pkg/errors"
)

type FrequencyUnit string

const (
	FrequencyDays   FrequencyUnit = "days"
	FrequencyMonths FrequencyUnit = "months"
	FrequencyYears  FrequencyUnit = "years"
)

func (u FrequencyUnit) Valid() bool {
	switch u {
	case FrequencyDays, FrequencyMonths, FrequencyYears:
		return true
	}
	return false
}

const (
	DueStateOverdue   = "overdue"
	DueStateDueSoon   = "due_soon"
	DueStateScheduled = "scheduled"

	DefaultDueSoonWindow = 7
)

// NextDueDate прибавляет интервал к базовой дате.
// Месяцы и годы нормализуются как в time.AddDate: 31 января + 1 месяц = 3 марта.
func NextDueDate(base time.Time, value int, unit FrequencyUnit) (time.Time, error) {
	if value < 1 {
		return time.Time{}, fmt.Errorf("%w: значение %d", apperrors.ErrInvalidFrequency, value)
	}
	switch unit {
	case FrequencyDays:
		return base.AddDate(0, 0, value), nil
	case FrequencyMonths:
		return base.AddDate(0, value, 0), nil
	case FrequencyYears:
		return base.AddDate(value, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: единица %q", apperrors.ErrInvalidFrequency, unit)
	}
}

// PlanBase - дата последнего выполнения, а если план ни разу не выполнялся - дата создания.
func PlanBase(lastExecution *time.Time, createdAt time.Time) time.Time {
	if lastExecution != nil && !lastExecution.IsZero() {
		return *lastExecution
	}
	return createdAt
}

// DaysUntil - разница в днях с округлением вверх: срок позже сегодня даёт 1, просроченный на сутки -1.
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// DueState классифицирует план по оставшимся дням; window <= 0 заменяется значением по умолчанию.
func DueState(daysUntil, window int) string {
	if window <= 0 {
		window = DefaultDueSoonWindow
	}
	switch {
	case daysUntil < 0:
		return DueStateOverdue
	case daysUntil <= window:
		return DueStateDueSoon
	default:
		return DueStateScheduled
	}
}

// Schedule - производные поля плана на момент now.
type Schedule struct {
	NextDueDate  time.Time
	DaysUntilDue int
	DueState     string
}

// ComputeSchedule считает срок и для приостановленных планов: статус плана здесь не учитывается.
func ComputeSchedule(lastExecution *time.Time, createdAt time.Time, value int, unit FrequencyUnit, now time.Time, window int) (Schedule, error) {
	due, err := NextDueDate(PlanBase(lastExecution, createdAt), value, unit)
	if err != nil {
		return Schedule{}, err
	}
	days := DaysUntil(due, now)
	return Schedule{
		NextDueDate:  due,
		DaysUntilDue: days,
		DueState:     DueState(days, window),
	}, nil
}

// IntervalDays - приблизительная длина интервала в днях, для сортировки и подсказок ИИ.
func IntervalDays(value int, unit FrequencyUnit) int {
	switch unit {
	case FrequencyMonths:
		return value * 30
	case FrequencyYears:
		return value * 365
	default:
		return value
	}
}
