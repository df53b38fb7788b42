// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jobsignal/scanner/internal/models"
)

var (
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDayRe    = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	relativeDayRe = regexp.MustCompile(`(?i)\b(today|tomorrow)\b`)
	nextWeekdayRe = regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	weekdayRe     = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	twelveHourRe  = regexp.MustCompile(`(?i)\b(1[0-2]|0?[1-9])(?::([0-5]\d))?\s*([ap])\.?\s?m\b`)
	twentyFourRe  = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	noonRe        = regexp.MustCompile(`(?i)\b(noon|midday)\b`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var dateStrategies = []strategy[models.Date]{
	{name: "iso_date", confidence: 0.9, find: func(_ *Extractor, in *input) (models.Date, bool) {
		return firstDate(in.texts(), isoDateRe, func(m []string) (models.Date, bool) {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			return calendarDate(y, time.Month(mo), d)
		})
	}},
	{name: "month_day", confidence: 0.9, find: func(e *Extractor, in *input) (models.Date, bool) {
		return firstDate(in.texts(), monthDayRe, func(m []string) (models.Date, bool) {
			mo := months[strings.ToLower(m[1])[:3]]
			d, _ := strconv.Atoi(m[2])
			if m[3] != "" {
				y, _ := strconv.Atoi(m[3])
				return calendarDate(y, mo, d)
			}
			return e.yearless(mo, d, in.receivedAt)
		})
	}},
	{name: "numeric_date", confidence: 0.8, find: func(e *Extractor, in *input) (models.Date, bool) {
		return firstDate(in.texts(), numericDateRe, func(m []string) (models.Date, bool) {
			mo, _ := strconv.Atoi(m[1])
			d, _ := strconv.Atoi(m[2])
			if mo < 1 || mo > 12 {
				return models.Date{}, false
			}
			switch len(m[3]) {
			case 4:
				y, _ := strconv.Atoi(m[3])
				return calendarDate(y, time.Month(mo), d)
			case 2:
				y, _ := strconv.Atoi(m[3])
				return calendarDate(2000+y, time.Month(mo), d)
			}
			return e.yearless(time.Month(mo), d, in.receivedAt)
		})
	}},
	{name: "today_tomorrow", confidence: 0.8, find: func(_ *Extractor, in *input) (models.Date, bool) {
		if in.receivedAt.IsZero() {
			return models.Date{}, false
		}
		return firstDate(in.texts(), relativeDayRe, func(m []string) (models.Date, bool) {
			day := models.DateOf(in.receivedAt)
			if strings.EqualFold(m[1], "tomorrow") {
				day = models.DateOf(in.receivedAt.AddDate(0, 0, 1))
			}
			return day, true
		})
	}},
	{name: "next_weekday", confidence: 0.7, find: func(_ *Extractor, in *input) (models.Date, bool) {
		return weekdayDate(in, nextWeekdayRe)
	}},
	{name: "weekday", confidence: 0.6, find: func(_ *Extractor, in *input) (models.Date, bool) {
		return weekdayDate(in, weekdayRe)
	}},
}

var timeStrategies = []strategy[models.Clock]{
	{name: "twelve_hour", confidence: 0.9, find: func(_ *Extractor, in *input) (models.Clock, bool) {
		for _, text := range in.texts() {
			if m := twelveHourRe.FindStringSubmatch(text); m != nil {
				h, _ := strconv.Atoi(m[1])
				mins := 0
				if m[2] != "" {
					mins, _ = strconv.Atoi(m[2])
				}
				h %= 12
				if strings.EqualFold(m[3], "p") {
					h += 12
				}
				return models.Clock{Hour: h, Minute: mins}, true
			}
		}
		return models.Clock{}, false
	}},
	{name: "twenty_four_hour", confidence: 0.8, find: func(_ *Extractor, in *input) (models.Clock, bool) {
		for _, text := range in.texts() {
			if m := twentyFourRe.FindStringSubmatch(text); m != nil {
				h, _ := strconv.Atoi(m[1])
				mins, _ := strconv.Atoi(m[2])
				return models.Clock{Hour: h, Minute: mins}, true
			}
		}
		return models.Clock{}, false
	}},
	{name: "noon", confidence: 0.7, find: func(_ *Extractor, in *input) (models.Clock, bool) {
		for _, text := range in.texts() {
			if noonRe.MatchString(text) {
				return models.Clock{Hour: 12}, true
			}
		}
		return models.Clock{}, false
	}},
}

var modalityStrategies = []strategy[models.Modality]{
	{name: "keyword", confidence: 0.9, find: func(e *Extractor, in *input) (models.Modality, bool) {
		return e.rules.Modality(in.msg.CleanBodyLower + "\n" + in.msg.CleanSubjectLower)
	}},
	{name: "invite_default", confidence: 0.2, find: func(_ *Extractor, _ *input) (models.Modality, bool) {
		return models.ModalityUnspecified, true
	}},
}

// firstDate returns the first match across texts that parse accepts.
func firstDate(texts []string, re *regexp.Regexp, parse func([]string) (models.Date, bool)) (models.Date, bool) {
	for _, text := range texts {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if d, ok := parse(m); ok {
				return d, true
			}
		}
	}
	return models.Date{}, false
}

// calendarDate rejects dates that time.Date would normalise, such as Feb 30.
func calendarDate(y int, m time.Month, d int) (models.Date, bool) {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return models.Date{}, false
	}
	return models.DateOf(t), true
}

// yearless places a month and day in the year the message was received,
// moving it to the next year when it would fall more than the rollover window
// in the past.
func (e *Extractor) yearless(m time.Month, d int, receivedAt time.Time) (models.Date, bool) {
	if receivedAt.IsZero() {
		return models.Date{}, false
	}
	received := models.DateOf(receivedAt).In(time.UTC)
	year := received.Year()
	date, ok := calendarDate(year, m, d)
	if !ok {
		// Feb 29 may only exist in the following year.
		return calendarDate(year+1, m, d)
	}
	cutoff := received.AddDate(0, 0, -e.rules.RolloverDays())
	if date.In(time.UTC).Before(cutoff) {
		return calendarDate(year+1, m, d)
	}
	return date, true
}

// weekdayDate resolves a weekday name to the first such day strictly after
// the day the message was received.
func weekdayDate(in *input, re *regexp.Regexp) (models.Date, bool) {
	if in.receivedAt.IsZero() {
		return models.Date{}, false
	}
	for _, text := range in.texts() {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		target := weekdays[strings.ToLower(m[1])]
		received := models.DateOf(in.receivedAt).In(time.UTC)
		delta := (int(target) - int(received.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return models.DateOf(received.AddDate(0, 0, delta)), true
	}
	return models.Date{}, false
}
