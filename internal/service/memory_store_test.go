package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/internal/repository"
)

var fixedNow = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

// memoryStaffStore mimics the staff table including its unique staff_code constraint.
type memoryStaffStore struct {
	mu          sync.Mutex
	nextID      int64
	staff       map[int64]*models.StaffMember
	counters    map[string]int
	createErr   error
	createCalls int
}

func newMemoryStaffStore() *memoryStaffStore {
	return &memoryStaffStore{staff: make(map[int64]*models.StaffMember), counters: make(map[string]int)}
}

func (m *memoryStaffStore) add(staff models.StaffMember) *models.StaffMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	staff.ID = m.nextID
	if staff.StaffCode == "" {
		staff.StaffCode = fmt.Sprintf("SEED-%d", staff.ID)
	}
	m.staff[staff.ID] = &staff
	copied := staff
	return &copied
}

func (m *memoryStaffStore) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffMember
	for _, id := range m.sortedIDs() {
		s := m.staff[id]
		if s.DeletedAt != nil {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memoryStaffStore) ListActiveTeaching(ctx context.Context, department string) ([]models.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffMember
	for _, id := range m.sortedIDs() {
		s := m.staff[id]
		if !s.IsTeaching() || !s.IsActive() {
			continue
		}
		if department != "" && (s.Department == nil || !strings.EqualFold(*s.Department, department)) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *memoryStaffStore) FindByID(ctx context.Context, id int64) (*models.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[id]
	if !ok || s.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (m *memoryStaffStore) Create(ctx context.Context, staff *models.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.staff {
		if existing.StaffCode == staff.StaffCode {
			return fmt.Errorf("create staff: %w", &pq.Error{Code: "23505", Constraint: repository.ConstraintStaffCode})
		}
	}
	m.nextID++
	staff.ID = m.nextID
	staff.CreatedAt = fixedNow
	staff.UpdatedAt = fixedNow
	copied := *staff
	m.staff[staff.ID] = &copied
	return nil
}

func (m *memoryStaffStore) Update(ctx context.Context, staff *models.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.staff[staff.ID]
	if !ok || existing.DeletedAt != nil {
		return sql.ErrNoRows
	}
	copied := *staff
	m.staff[staff.ID] = &copied
	return nil
}

func (m *memoryStaffStore) UpdateStatus(ctx context.Context, id int64, status models.StaffStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.staff[id]
	if !ok || existing.DeletedAt != nil {
		return sql.ErrNoRows
	}
	existing.Status = status
	return nil
}

func (m *memoryStaffStore) SoftDelete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.staff[id]
	if !ok || existing.DeletedAt != nil {
		return sql.ErrNoRows
	}
	deletedAt := fixedNow
	existing.DeletedAt = &deletedAt
	return nil
}

func (m *memoryStaffStore) CountWithPrefix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countPrefix(prefix), nil
}

func (m *memoryStaffStore) Exists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.staff {
		if existing.StaffCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStaffStore) NextValue(ctx context.Context, scope string, year int, codePrefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s:%d", scope, year)
	value := m.counters[key]
	if count := m.countPrefix(codePrefix); count > value {
		value = count
	}
	value++
	m.counters[key] = value
	return value, nil
}

func (m *memoryStaffStore) codes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.staff))
	for _, id := range m.sortedIDs() {
		out = append(out, m.staff[id].StaffCode)
	}
	return out
}

func (m *memoryStaffStore) countPrefix(prefix string) int {
	count := 0
	for _, existing := range m.staff {
		if strings.HasPrefix(existing.StaffCode, prefix) {
			count++
		}
	}
	return count
}

func (m *memoryStaffStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(m.staff))
	for id := range m.staff {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type memorySubjects map[int64]*models.Subject

func (m memorySubjects) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	if subject, ok := m[id]; ok {
		return subject, nil
	}
	return nil, sql.ErrNoRows
}

type memoryClasses map[int64]*models.Class

func (m memoryClasses) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	if class, ok := m[id]; ok {
		return class, nil
	}
	return nil, sql.ErrNoRows
}

type memoryYears struct {
	years   map[int64]*models.AcademicYear
	current int64
}

func (m memoryYears) FindByID(ctx context.Context, id int64) (*models.AcademicYear, error) {
	if year, ok := m.years[id]; ok {
		return year, nil
	}
	return nil, sql.ErrNoRows
}

func (m memoryYears) FindCurrent(ctx context.Context) (*models.AcademicYear, error) {
	return m.FindByID(ctx, m.current)
}

// memoryAssignmentStore serialises transactions with one mutex and restores the rows when the
// transaction function fails.
type memoryAssignmentStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      []models.StaffAssignment
	locks     []string
	insertErr error
}

func (m *memoryAssignmentStore) InTx(ctx context.Context, fn func(tx repository.AssignmentTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	backup := append([]models.StaffAssignment(nil), m.rows...)
	backupID := m.nextID
	if err := fn(&memoryAssignmentTx{store: m}); err != nil {
		m.rows = backup
		m.nextID = backupID
		return err
	}
	return nil
}

func (m *memoryAssignmentStore) FindByID(ctx context.Context, id int64) (*models.StaffAssignmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == id {
			return &models.StaffAssignmentDetail{StaffAssignment: row}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryAssignmentStore) ListByStaff(ctx context.Context, staffID int64, filter models.AssignmentFilter) ([]models.StaffAssignmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffAssignmentDetail
	for _, row := range m.rows {
		if row.StaffID != staffID {
			continue
		}
		if filter.AcademicYearID != nil && row.AcademicYearID != *filter.AcademicYearID {
			continue
		}
		if filter.AssignmentType != "" && row.AssignmentType != filter.AssignmentType {
			continue
		}
		if !filter.IncludeInactive && !row.IsActive {
			continue
		}
		out = append(out, models.StaffAssignmentDetail{StaffAssignment: row})
	}
	sortDetails(out)
	return out, nil
}

func (m *memoryAssignmentStore) ListHistory(ctx context.Context, filter models.AssignmentHistoryFilter) ([]models.StaffAssignmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffAssignmentDetail
	for _, row := range m.rows {
		if filter.ClassID != nil && !sameInt64(row.ClassID, filter.ClassID) {
			continue
		}
		if filter.SubjectID != nil && !sameInt64(row.SubjectID, filter.SubjectID) {
			continue
		}
		if filter.AcademicYearID != nil && row.AcademicYearID != *filter.AcademicYearID {
			continue
		}
		if filter.AssignmentType != "" && row.AssignmentType != filter.AssignmentType {
			continue
		}
		out = append(out, models.StaffAssignmentDetail{StaffAssignment: row})
	}
	sortDetails(out)
	return out, nil
}

func (m *memoryAssignmentStore) ListActiveByYear(ctx context.Context, academicYearID int64, staffID *int64) ([]models.StaffAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffAssignment
	for _, row := range m.rows {
		if row.AcademicYearID != academicYearID || !row.IsActive {
			continue
		}
		if staffID != nil && row.StaffID != *staffID {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memoryAssignmentStore) End(ctx context.Context, id int64, endDate time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].IsActive {
			end := endDate
			m.rows[i].IsActive = false
			m.rows[i].EndDate = &end
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAssignmentStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryAssignmentStore) activeFor(predicate func(models.StaffAssignment) bool) []models.StaffAssignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffAssignment
	for _, row := range m.rows {
		if row.IsActive && predicate(row) {
			out = append(out, row)
		}
	}
	return out
}

type memoryAssignmentTx struct {
	store *memoryAssignmentStore
}

func (t *memoryAssignmentTx) LockStaffYear(ctx context.Context, staffID, academicYearID int64) error {
	t.store.locks = append(t.store.locks, fmt.Sprintf("staff:%d:%d", staffID, academicYearID))
	return nil
}

func (t *memoryAssignmentTx) LockClassYear(ctx context.Context, classID, academicYearID int64) error {
	t.store.locks = append(t.store.locks, fmt.Sprintf("class:%d:%d", classID, academicYearID))
	return nil
}

func (t *memoryAssignmentTx) FindActiveClassTeacherByStaff(ctx context.Context, staffID, academicYearID int64) (*models.StaffAssignment, error) {
	for _, row := range t.store.rows {
		if row.StaffID == staffID && row.AcademicYearID == academicYearID && row.AssignmentType == models.AssignmentTypeClassTeacher && row.IsActive {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memoryAssignmentTx) CountActiveSubjectAssignments(ctx context.Context, staffID, academicYearID int64) (int, error) {
	count := 0
	for _, row := range t.store.rows {
		if row.StaffID == staffID && row.AcademicYearID == academicYearID && row.AssignmentType == models.AssignmentTypeSubjectTeacher && row.IsActive {
			count++
		}
	}
	return count, nil
}

func (t *memoryAssignmentTx) FindActiveSubjectAssignment(ctx context.Context, key models.SubjectAssignmentKey) (*models.StaffAssignment, error) {
	for _, row := range t.store.rows {
		if row.AssignmentType != models.AssignmentTypeSubjectTeacher || !row.IsActive {
			continue
		}
		if row.StaffID == key.StaffID && sameInt64(row.SubjectID, &key.SubjectID) && sameInt64(row.ClassID, key.ClassID) &&
			sameString(row.Section, key.Section) && row.AcademicYearID == key.AcademicYearID {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memoryAssignmentTx) DeactivateClassTeachers(ctx context.Context, classID, academicYearID int64, endDate time.Time) ([]models.StaffAssignment, error) {
	var out []models.StaffAssignment
	for i := range t.store.rows {
		row := &t.store.rows[i]
		if row.AssignmentType == models.AssignmentTypeClassTeacher && row.IsActive && row.AcademicYearID == academicYearID && sameInt64(row.ClassID, &classID) {
			end := endDate
			row.IsActive = false
			row.EndDate = &end
			out = append(out, *row)
		}
	}
	return out, nil
}

func (t *memoryAssignmentTx) DeactivateSubjectAssignments(ctx context.Context, staffID, subjectID int64, classID *int64, endDate time.Time) ([]models.StaffAssignment, error) {
	var out []models.StaffAssignment
	for i := range t.store.rows {
		row := &t.store.rows[i]
		if row.AssignmentType == models.AssignmentTypeSubjectTeacher && row.IsActive && row.StaffID == staffID &&
			sameInt64(row.SubjectID, &subjectID) && sameInt64(row.ClassID, classID) {
			end := endDate
			row.IsActive = false
			row.EndDate = &end
			out = append(out, *row)
		}
	}
	return out, nil
}

func (t *memoryAssignmentTx) Insert(ctx context.Context, assignment *models.StaffAssignment) error {
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	t.store.nextID++
	assignment.ID = t.store.nextID
	assignment.CreatedAt = fixedNow
	assignment.UpdatedAt = fixedNow
	t.store.rows = append(t.store.rows, *assignment)
	return nil
}

func sortDetails(items []models.StaffAssignmentDetail) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartDate.Equal(items[j].StartDate) {
			return items[i].StartDate.After(items[j].StartDate)
		}
		return items[i].ID > items[j].ID
	})
}

func sameInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type auditRecorder struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (a *auditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, *log)
	return nil
}

func (a *auditRecorder) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, log := range a.logs {
		out = append(out, log.Action)
	}
	return out
}
