package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"timeface/internal/model"
	"timeface/internal/repository"
	pkgerrors "timeface/pkg/errors"
)

// ── Mock CollaboratorRepository ──

type mockCollaboratorRepo struct {
	items map[string]*model.Collaborator
}

func newMockCollaboratorRepo() *mockCollaboratorRepo {
	return &mockCollaboratorRepo{items: make(map[string]*model.Collaborator)}
}

func (m *mockCollaboratorRepo) add(id, name string, photo string) *model.Collaborator {
	c := &model.Collaborator{ID: id, Name: name, Active: true}
	if photo != "" {
		c.ReferencePhotoURL = &photo
	}
	m.items[id] = c
	return c
}

func (m *mockCollaboratorRepo) Create(_ context.Context, c *model.Collaborator) error {
	if c.ID == "" {
		c.ID = "col-" + c.Name
	}
	m.items[c.ID] = c
	return nil
}

func (m *mockCollaboratorRepo) GetByID(_ context.Context, id string) (*model.Collaborator, error) {
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCollaboratorRepo) GetForUpdate(ctx context.Context, id string) (*model.Collaborator, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCollaboratorRepo) List(_ context.Context, activeOnly bool) ([]model.Collaborator, error) {
	var result []model.Collaborator
	for _, c := range m.items {
		if activeOnly && !c.Active {
			continue
		}
		result = append(result, *c)
	}
	sortCollaborators(result)
	return result, nil
}

func (m *mockCollaboratorRepo) ListByIDs(_ context.Context, ids []string) ([]model.Collaborator, error) {
	var result []model.Collaborator
	for _, id := range ids {
		if c, ok := m.items[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCollaboratorRepo) ListMatchCandidates(_ context.Context) ([]model.Collaborator, error) {
	var result []model.Collaborator
	for _, c := range m.items {
		if c.Active && c.HasReferencePhoto() {
			result = append(result, *c)
		}
	}
	sortCollaborators(result)
	return result, nil
}

func (m *mockCollaboratorRepo) Update(_ context.Context, c *model.Collaborator) error {
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *mockCollaboratorRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.items, id)
	return nil
}

func sortCollaborators(list []model.Collaborator) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	items map[string]*model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{items: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) add(id, name, start, end string) *model.Shift {
	s := &model.Shift{ID: id, Name: name, StartTime: start, EndTime: end, Color: "#3b82f6"}
	s.Version = 1
	m.items[id] = s
	return s
}

func (m *mockShiftRepo) Create(_ context.Context, s *model.Shift) error {
	if s.ID == "" {
		s.ID = "shift-" + s.Name
	}
	m.items[s.ID] = s
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.items {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockShiftRepo) ListByIDs(_ context.Context, ids []string) ([]model.Shift, error) {
	var result []model.Shift
	for _, id := range ids {
		if s, ok := m.items[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, s *model.Shift) error {
	cur, ok := m.items[s.ID]
	if !ok || cur.Version != s.Version {
		return pkgerrors.ErrConflict
	}
	s.Version++
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

// ── Mock ShiftPatternRepository ──

type mockShiftPatternRepo struct {
	items map[string]*model.ShiftPattern
}

func newMockShiftPatternRepo() *mockShiftPatternRepo {
	return &mockShiftPatternRepo{items: make(map[string]*model.ShiftPattern)}
}

func (m *mockShiftPatternRepo) Create(_ context.Context, p *model.ShiftPattern) error {
	if p.ID == "" {
		p.ID = "pat-" + p.Name
	}
	m.items[p.ID] = p
	return nil
}

func (m *mockShiftPatternRepo) GetByID(_ context.Context, id string) (*model.ShiftPattern, error) {
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftPatternRepo) List(_ context.Context) ([]model.ShiftPattern, error) {
	var result []model.ShiftPattern
	for _, p := range m.items {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockShiftPatternRepo) Update(_ context.Context, p *model.ShiftPattern) error {
	cur, ok := m.items[p.ID]
	if !ok || cur.Version != p.Version {
		return pkgerrors.ErrConflict
	}
	p.Version++
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockShiftPatternRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockShiftPatternRepo) CountReferencing(_ context.Context, shiftID string) (int64, error) {
	var n int64
	for _, p := range m.items {
		for _, id := range p.Sequence.ShiftIDs() {
			if id == shiftID {
				n++
				break
			}
		}
	}
	return n, nil
}

// ── Mock ScheduleRepository ──
// 以 (员工, 日期) 为键，与数据库唯一索引一致

type mockScheduleRepo struct {
	rows   map[model.ScheduleKey]*model.Schedule
	shifts *mockShiftRepo
	seq    int
	// failBatch 非 nil 时批量写入直接返回该错误，不写入任何行
	failBatch error
}

func newMockScheduleRepo(shifts *mockShiftRepo) *mockScheduleRepo {
	return &mockScheduleRepo{rows: make(map[model.ScheduleKey]*model.Schedule), shifts: shifts}
}

func (m *mockScheduleRepo) put(s *model.Schedule) {
	if s.ID == "" {
		m.seq++
		s.ID = fmt.Sprintf("sch-%d", m.seq)
	}
	if s.Status == "" {
		s.Status = model.ScheduleStatusScheduled
	}
	cp := *s
	cp.Shift = nil
	m.rows[s.Key()] = &cp
}

func (m *mockScheduleRepo) withShift(s model.Schedule) model.Schedule {
	if m.shifts != nil {
		if sh, ok := m.shifts.items[s.ShiftID]; ok {
			cp := *sh
			s.Shift = &cp
		}
	}
	return s
}

func (m *mockScheduleRepo) ListByRange(_ context.Context, start, end model.Date, ids []string) ([]model.Schedule, error) {
	filter := make(map[string]bool, len(ids))
	for _, id := range ids {
		filter[id] = true
	}
	var result []model.Schedule
	for _, r := range m.rows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		if len(ids) > 0 && !filter[r.CollaboratorID] {
			continue
		}
		result = append(result, m.withShift(*r))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].CollaboratorID < result[j].CollaboratorID
	})
	return result, nil
}

func (m *mockScheduleRepo) GetByKey(_ context.Context, collaboratorID string, date model.Date) (*model.Schedule, error) {
	r, ok := m.rows[model.ScheduleKey{CollaboratorID: collaboratorID, Date: date}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s := m.withShift(*r)
	return &s, nil
}

func (m *mockScheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	if _, ok := m.rows[s.Key()]; ok {
		return fmt.Errorf("%w: 员工 %s 在 %s 已有排班", pkgerrors.ErrConflict, s.CollaboratorID, s.Date)
	}
	m.put(s)
	return nil
}

func (m *mockScheduleRepo) byID(id string) *model.Schedule {
	for _, r := range m.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (m *mockScheduleRepo) UpdateShift(_ context.Context, id, shiftID string, _ *string) error {
	r := m.byID(id)
	if r == nil {
		return gorm.ErrRecordNotFound
	}
	r.ShiftID = shiftID
	return nil
}

func (m *mockScheduleRepo) UpdateStatus(_ context.Context, id, status string) error {
	r := m.byID(id)
	if r == nil {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	return nil
}

func (m *mockScheduleRepo) DeleteByKey(_ context.Context, collaboratorID string, date model.Date) (int64, error) {
	key := model.ScheduleKey{CollaboratorID: collaboratorID, Date: date}
	if _, ok := m.rows[key]; !ok {
		return 0, nil
	}
	delete(m.rows, key)
	return 1, nil
}

func (m *mockScheduleRepo) UpsertBatch(_ context.Context, rows []model.Schedule) error {
	if m.failBatch != nil {
		return m.failBatch
	}
	for i := range rows {
		if cur, ok := m.rows[rows[i].Key()]; ok {
			cur.ShiftID = rows[i].ShiftID
			continue
		}
		m.put(&rows[i])
	}
	return nil
}

func (m *mockScheduleRepo) InsertMissing(_ context.Context, rows []model.Schedule) (int64, error) {
	if m.failBatch != nil {
		return 0, m.failBatch
	}
	var n int64
	for i := range rows {
		if _, ok := m.rows[rows[i].Key()]; ok {
			continue
		}
		m.put(&rows[i])
		n++
	}
	return n, nil
}

func (m *mockScheduleRepo) CountByShift(_ context.Context, shiftID string) (int64, error) {
	var n int64
	for _, r := range m.rows {
		if r.ShiftID == shiftID {
			n++
		}
	}
	return n, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	mu      sync.Mutex
	records []model.AttendanceRecord
	seq     int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) add(collaboratorID, kind string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.records = append(m.records, model.AttendanceRecord{
		ID:               fmt.Sprintf("rec-%d", m.seq),
		CollaboratorID:   collaboratorID,
		CollaboratorName: collaboratorID,
		Timestamp:        at,
		Type:             kind,
	})
}

func (m *mockAttendanceRepo) Create(_ context.Context, rec *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("rec-%d", m.seq)
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockAttendanceRepo) GetLatest(_ context.Context, collaboratorID string) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.AttendanceRecord
	for i := range m.records {
		r := &m.records[i]
		if r.CollaboratorID != collaboratorID {
			continue
		}
		if latest == nil || !r.Timestamp.Before(latest.Timestamp) {
			latest = r
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockAttendanceRepo) List(_ context.Context, f repository.AttendanceFilter) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if f.CollaboratorID != "" && r.CollaboratorID != f.CollaboratorID {
			continue
		}
		if f.From != nil && r.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && !r.Timestamp.Before(*f.To) {
			continue
		}
		result = append(result, r)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

func (m *mockAttendanceRepo) ListOpenEntries(ctx context.Context) ([]model.AttendanceRecord, error) {
	seen := make(map[string]bool)
	m.mu.Lock()
	var ids []string
	for _, r := range m.records {
		if !seen[r.CollaboratorID] {
			seen[r.CollaboratorID] = true
			ids = append(ids, r.CollaboratorID)
		}
	}
	m.mu.Unlock()

	var result []model.AttendanceRecord
	for _, id := range ids {
		last, err := m.GetLatest(ctx, id)
		if err != nil {
			return nil, err
		}
		if last.Type == model.AttendanceEntry {
			result = append(result, *last)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) types(collaboratorID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kinds []string
	for _, r := range m.records {
		if r.CollaboratorID == collaboratorID {
			kinds = append(kinds, r.Type)
		}
	}
	return strings.Join(kinds, ",")
}

// ── Mock AppSettingRepository ──

type mockSettingRepo struct {
	items map[string]model.AppSetting
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{items: make(map[string]model.AppSetting)}
}

func (m *mockSettingRepo) List(_ context.Context) ([]model.AppSetting, error) {
	var result []model.AppSetting
	for _, s := range m.items {
		result = append(result, s)
	}
	return result, nil
}

func (m *mockSettingRepo) Get(_ context.Context, key string) (*model.AppSetting, error) {
	s, ok := m.items[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m *mockSettingRepo) Upsert(_ context.Context, settings []model.AppSetting) error {
	for _, s := range settings {
		m.items[s.Key] = s
	}
	return nil
}

// ── Mock 聚合 ──

type mockRepos struct {
	collaborators *mockCollaboratorRepo
	shifts        *mockShiftRepo
	patterns      *mockShiftPatternRepo
	schedules     *mockScheduleRepo
	attendance    *mockAttendanceRepo
	settings      *mockSettingRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	shifts := newMockShiftRepo()
	m := &mockRepos{
		collaborators: newMockCollaboratorRepo(),
		shifts:        shifts,
		patterns:      newMockShiftPatternRepo(),
		schedules:     newMockScheduleRepo(shifts),
		attendance:    newMockAttendanceRepo(),
		settings:      newMockSettingRepo(),
	}
	repo := &repository.Repository{
		Collaborator: m.collaborators,
		Shift:        m.shifts,
		ShiftPattern: m.patterns,
		Schedule:     m.schedules,
		Attendance:   m.attendance,
		Setting:      m.settings,
	}
	return repo, m
}
