package calendar

import (
	"context"
	"fmt"
	"time"

	"ai-resume-analyst/pkg/log"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleSource 通过 Google Calendar FreeBusy 接口读取忙碌区间。
type GoogleSource struct {
	svc      *gcal.Service
	timezone string
}

// NewGoogleSource 使用服务账号凭据文件创建 Calendar 服务。
func NewGoogleSource(ctx context.Context, credentialsFile, timezone string) (*GoogleSource, error) {
	opts := []option.ClientOption{option.WithScopes(gcal.CalendarReadonlyScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleSource{svc: svc, timezone: timezone}, nil
}

func (g *GoogleSource) Busy(ctx context.Context, calendarIDs []string, start, end time.Time) (map[string][]Interval, error) {
	items := make([]*gcal.FreeBusyRequestItem, 0, len(calendarIDs))
	for _, id := range calendarIDs {
		items = append(items, &gcal.FreeBusyRequestItem{Id: id})
	}
	req := &gcal.FreeBusyRequest{
		TimeMin:  start.Format(time.RFC3339),
		TimeMax:  end.Format(time.RFC3339),
		TimeZone: g.timezone,
		Items:    items,
	}

	resp, err := g.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	return busyFromResponse(resp, start, end), nil
}

// busyFromResponse 把 FreeBusy 响应转换为忙碌区间。
// 无法读取的日历以及含无法解析区间的日历，整个查询窗口都视为忙碌。
func busyFromResponse(resp *gcal.FreeBusyResponse, start, end time.Time) map[string][]Interval {
	whole := []Interval{{Start: start, End: end}}
	busy := make(map[string][]Interval, len(resp.Calendars))
	for id, cal := range resp.Calendars {
		if len(cal.Errors) > 0 {
			log.Warnf("[Calendar] 日历 %s 无法读取, 按全程忙碌处理: %s", id, cal.Errors[0].Reason)
			busy[id] = whole
			continue
		}
		for _, p := range cal.Busy {
			s, err := time.Parse(time.RFC3339, p.Start)
			if err != nil {
				busy[id] = whole
				break
			}
			e, err := time.Parse(time.RFC3339, p.End)
			if err != nil {
				busy[id] = whole
				break
			}
			busy[id] = append(busy[id], Interval{Start: s, End: e})
		}
	}
	return busy
}
