package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"timeface/config"
	"timeface/internal/model"
	"timeface/pkg/redis"
)

// ── 测试辅助 ──

const testTimezone = "America/Bogota"

func testAttendanceConfig() *config.AttendanceConfig {
	return &config.AttendanceConfig{
		Timezone:          testTimezone,
		DailyHours:        8,
		WeeklyHoursLimit:  44,
		LockTTL:           10 * time.Second,
		UnscheduledPolicy: config.UnscheduledAllow,
		HoursBaseline:     config.BaselineHeuristic,
	}
}

func testConfig() *config.Config {
	return &config.Config{Attendance: *testAttendanceConfig()}
}

func bogota() *time.Location {
	loc, err := time.LoadLocation(testTimezone)
	if err != nil {
		panic(err)
	}
	return loc
}

// localTime 构造考勤时区下的时刻
func localTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, bogota())
}

func date(year int, month time.Month, day int) model.Date {
	return model.NewDate(year, month, day)
}

func strPtr(s string) *string { return &s }

// ── 假锁 ──

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	acquired int
	released int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held[key] {
		return nil, redis.ErrLockHeld
	}
	l.held[key] = true
	l.acquired++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
	}, nil
}

// ── 假照片存储 ──

type fakePhotoStore struct {
	saved   map[string][]byte
	refs    map[string][]byte
	loadErr map[string]error
	seq     int
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{
		saved:   make(map[string][]byte),
		refs:    make(map[string][]byte),
		loadErr: make(map[string]error),
	}
}

func (p *fakePhotoStore) Save(_ context.Context, kind string, data []byte) (string, error) {
	p.seq++
	ref := "/media/" + kind + "/" + string(rune('a'+p.seq)) + ".jpg"
	p.saved[ref] = data
	return ref, nil
}

func (p *fakePhotoStore) Load(_ context.Context, ref string) ([]byte, error) {
	if err, ok := p.loadErr[ref]; ok {
		return nil, err
	}
	if data, ok := p.refs[ref]; ok {
		return data, nil
	}
	if data, ok := p.saved[ref]; ok {
		return data, nil
	}
	return nil, errors.New("not found")
}

func (p *fakePhotoStore) Delete(_ context.Context, ref string) error {
	delete(p.saved, ref)
	return nil
}

// ── 假人脸比对 ──
// 参考照内容与现场照内容相同即判定命中

type fakeMatcher struct {
	errFor map[string]error
	calls  []string
}

func (m *fakeMatcher) Match(_ context.Context, live, reference []byte) (bool, error) {
	m.calls = append(m.calls, string(reference))
	if err, ok := m.errFor[string(reference)]; ok {
		return false, err
	}
	return string(live) == string(reference), nil
}
