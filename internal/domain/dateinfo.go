package domain

import (
	"time"

	"github.com/6tail/lunar-go/calendar"
)

// DateInfo is the header date block shown by the portal.
type DateInfo struct {
	Time      string `json:"time,omitempty"`
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	LunarDate string `json:"lunarDate"`
}

var chineseWeekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// ChineseWeekday returns the weekday name used in the header.
func ChineseWeekday(d time.Weekday) string {
	return chineseWeekdays[d]
}

// LunarFormatter renders the lunar calendar part of a date.
type LunarFormatter func(t time.Time) string

// LunarDate formats t as "<month>月<day>" followed by the solar term when
// the day is one, e.g. "六月十八" or "三月初五 清明".
func LunarDate(t time.Time) string {
	lunar := calendar.NewLunarFromDate(t)
	s := lunar.GetMonthInChinese() + "月" + lunar.GetDayInChinese()
	if jieQi := lunar.GetJieQi(); jieQi != "" {
		s += " " + jieQi
	}
	return s
}

// BuildDateInfo renders the header block for t. A nil formatter uses LunarDate.
func BuildDateInfo(t time.Time, lunar LunarFormatter) DateInfo {
	if lunar == nil {
		lunar = LunarDate
	}
	return DateInfo{
		Time:      t.Format("15:04"),
		Date:      t.Format("1月2日"),
		Weekday:   ChineseWeekday(t.Weekday()),
		LunarDate: lunar(t),
	}
}
