package utils

import (
	"testing"
	"time"
)

// TestDayStartUTC проверяет вычисление начала суток UTC
func TestDayStartUTC(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "середина дня",
			in:   time.Date(2024, 3, 15, 14, 30, 45, 123456789, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "ровно полночь",
			in:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "последняя наносекунда",
			in:   time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "не-UTC таймзона",
			in:   time.Date(2024, 3, 15, 1, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
			want: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "високосный год",
			in:   time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DayStartUTC(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("DayStartUTC(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestDayEndUTC проверяет вычисление конца суток UTC
func TestDayEndUTC(t *testing.T) {
	in := time.Date(2024, 3, 15, 14, 30, 45, 0, time.UTC)
	want := time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC)

	got := DayEndUTC(in)
	if !got.Equal(want) {
		t.Errorf("DayEndUTC(%v) = %v, want %v", in, got, want)
	}
}

// TestSameDayUTC проверяет сравнение суток в UTC
func TestSameDayUTC(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{
			name: "одни сутки",
			a:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC),
			want: true,
		},
		{
			name: "соседние сутки",
			a:    time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC),
			b:    time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "одни сутки в разных таймзонах",
			a:    time.Date(2024, 3, 15, 1, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
			b:    time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameDayUTC(tt.a, tt.b); got != tt.want {
				t.Errorf("SameDayUTC(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestDayRangeUTC проверяет полуоткрытый интервал суток
func TestDayRangeUTC(t *testing.T) {
	r := DayRangeUTC(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		in   time.Time
		want bool
	}{
		{
			name: "начало интервала",
			in:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "середина",
			in:   time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "последняя наносекунда",
			in:   time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC),
			want: true,
		},
		{
			name: "полночь следующих суток",
			in:   time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "до интервала",
			in:   time.Date(2024, 3, 14, 23, 59, 59, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.in); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func BenchmarkDayStartUTC(b *testing.B) {
	t := time.Now().UTC()
	for i := 0; i < b.N; i++ {
		DayStartUTC(t)
	}
}

func BenchmarkTimeRangeContains(b *testing.B) {
	r := DayRangeUTC(time.Now())
	t := time.Now().UTC()
	for i := 0; i < b.N; i++ {
		r.Contains(t)
	}
}
