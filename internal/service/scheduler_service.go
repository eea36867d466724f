package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService drives reminder delivery. Jobs share one cron runner in
// the configured location; Stop blocks until in-flight jobs return.
type SchedulerService struct {
	runner *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		runner: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleInterval runs job every interval, first firing one interval after
// Start. Sub-second intervals round up to one second.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("delivery interval must be positive, got %s", interval)
	}
	seconds := int(interval.Seconds())
	if seconds == 0 {
		seconds = 1
	}
	return s.runner.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// ScheduleDaily runs job once a day at the given wall-clock time, "HH:MM" in
// the scheduler's location.
func (s *SchedulerService) ScheduleDaily(at string, job func()) (cron.EntryID, error) {
	hour, minute, err := parseWallClock(at)
	if err != nil {
		return 0, err
	}
	// second minute hour dom month dow
	return s.runner.AddFunc(fmt.Sprintf("0 %d %d * * *", minute, hour), job)
}

func (s *SchedulerService) Start() {
	s.runner.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *SchedulerService) Stop() {
	<-s.runner.Stop().Done()
}

func parseWallClock(at string) (hour, minute int, err error) {
	rawHour, rawMinute, ok := strings.Cut(at, ":")
	if !ok {
		return 0, 0, fmt.Errorf("delivery time %q must look like HH:MM", at)
	}
	if hour, err = strconv.Atoi(rawHour); err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("delivery time %q has no valid hour", at)
	}
	if minute, err = strconv.Atoi(rawMinute); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("delivery time %q has no valid minute", at)
	}
	return hour, minute, nil
}
