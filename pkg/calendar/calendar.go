// Package calendar 查询候选人未来 7 个工作日的空闲时段，为可用性检查提供数据。
package calendar

import (
	"context"
	"fmt"
	"time"

	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/pkg/log"
)

// lookaheadDays 从明天起向后查看的天数。
const lookaheadDays = 7

// dayLayout 是可用日期在结果中的展示格式。
const dayLayout = "Mon Jan 2"

// Result 是可用性查询的结构化结果，序列化为 {"availability": {"next_7_days": {...}}}。
type Result struct {
	Availability Availability `json:"availability"`
}

// Availability 将时间段桶映射到所有候选人都空闲的日期列表。
// Slots 保存配置中的时间段顺序，渲染时按此顺序输出。
type Availability struct {
	NextSevenDays map[string][]string `json:"next_7_days"`
	Slots         []string            `json:"slots"`
}

// Interval 表示一个忙碌区间 [Start, End)。
type Interval struct {
	Start time.Time
	End   time.Time
}

// Client 查询一组日历（以员工邮箱为日历 ID）的共同空闲时段。
type Client interface {
	Availability(ctx context.Context, calendarIDs []string) (Result, error)
}

// BusySource 返回每个日历在 [start, end) 内的忙碌区间。
type BusySource interface {
	Busy(ctx context.Context, calendarIDs []string, start, end time.Time) (map[string][]Interval, error)
}

type checker struct {
	source BusySource
	slots  []config.SlotConfig
	loc    *time.Location
	now    func() time.Time
}

// NewClient 根据配置选择日历来源："google" 使用 Google Calendar FreeBusy，其余情况使用静态来源。
func NewClient(ctx context.Context, cfg config.CalendarConfig) (Client, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", cfg.Timezone, err)
	}
	slots := cfg.Slots
	if len(slots) == 0 {
		slots = config.DefaultSlots()
	}

	var source BusySource
	switch cfg.Provider {
	case "google":
		source, err = NewGoogleSource(ctx, cfg.CredentialsFile, cfg.Timezone)
		if err != nil {
			return nil, err
		}
	default:
		source = StaticSource{}
	}
	log.Infof("[Calendar] 使用日历来源: %s, 时区: %s, 时间段: %d", providerName(cfg.Provider), cfg.Timezone, len(slots))
	return NewChecker(source, slots, loc, time.Now), nil
}

// NewChecker 用指定的忙碌来源构造 Client。
func NewChecker(source BusySource, slots []config.SlotConfig, loc *time.Location, now func() time.Time) Client {
	return &checker{source: source, slots: slots, loc: loc, now: now}
}

func (c *checker) Availability(ctx context.Context, calendarIDs []string) (Result, error) {
	today := startOfDay(c.now().In(c.loc))
	start := today.AddDate(0, 0, 1)
	end := today.AddDate(0, 0, lookaheadDays+1)

	busy := map[string][]Interval{}
	if len(calendarIDs) > 0 {
		var err error
		busy, err = c.source.Busy(ctx, calendarIDs, start, end)
		if err != nil {
			return Result{}, fmt.Errorf("查询忙碌时段失败: %w", err)
		}
	}
	return Result{Availability: ComputeAvailability(busy, c.slots, today)}, nil
}

// ComputeAvailability 计算 today 之后 7 天内（跳过周末）每个时间段所有日历都空闲的日期。
func ComputeAvailability(busy map[string][]Interval, slots []config.SlotConfig, today time.Time) Availability {
	avail := Availability{
		NextSevenDays: make(map[string][]string, len(slots)),
		Slots:         make([]string, 0, len(slots)),
	}
	for _, s := range slots {
		avail.Slots = append(avail.Slots, s.Name)
		avail.NextSevenDays[s.Name] = []string{}
	}

	for i := 1; i <= lookaheadDays; i++ {
		day := today.AddDate(0, 0, i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		for _, s := range slots {
			window := Interval{
				Start: day.Add(time.Duration(s.StartHour) * time.Hour),
				End:   day.Add(time.Duration(s.EndHour) * time.Hour),
			}
			if allFree(busy, window) {
				avail.NextSevenDays[s.Name] = append(avail.NextSevenDays[s.Name], day.Format(dayLayout))
			}
		}
	}
	return avail
}

func allFree(busy map[string][]Interval, window Interval) bool {
	for _, intervals := range busy {
		for _, b := range intervals {
			if b.Start.Before(window.End) && window.Start.Before(b.End) {
				return false
			}
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func providerName(p string) string {
	if p == "google" {
		return p
	}
	return "static"
}

// StaticSource 不读取任何日历，所有人在工作时间内都视为空闲。
type StaticSource struct{}

func (StaticSource) Busy(_ context.Context, _ []string, _, _ time.Time) (map[string][]Interval, error) {
	return map[string][]Interval{}, nil
}
