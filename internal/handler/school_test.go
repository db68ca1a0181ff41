package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/lectern-dev/lectern/shared/api"
	"github.com/lectern-dev/lectern/shared/domain"
	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSchool(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		m := newMocks()
		m.school.MockCreate = func(data domain.SchoolCreationData) (domain.School, error) {
			assert.Equal(t, "Riverside High", data.Name)
			assert.Equal(t, "u1", data.CreatorId)
			return domain.School{Id: "s1", Name: data.Name, JoinKey: "A1B2C3"}, nil
		}

		req := createRequest(t, http.MethodPost, "/v1/schools", []byte(`{"name": "Riverside High"}`))
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp api.CreateSchoolResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "s1", resp.SchoolId)
		assert.Equal(t, "A1B2C3", resp.JoinKey)
	})

	t.Run("missing name", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/v1/schools", []byte(`{"description": "no name"}`))
		rr := serve(t, newMocks(), testUser(), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/v1/schools", []byte(`{broken`))
		rr := serve(t, newMocks(), testUser(), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestJoinSchool(t *testing.T) {
	t.Run("successful join", func(t *testing.T) {
		m := newMocks()
		m.school.MockJoin = func(userId domain.UserId, joinKey domain.JoinKey) (domain.School, domain.Membership, error) {
			assert.Equal(t, "A1B2C3", joinKey)
			return domain.School{Id: "s1", Name: "Riverside High"},
				domain.Membership{UserId: userId, SchoolId: "s1", Role: domain.RoleStudent}, nil
		}

		req := createRequest(t, http.MethodPost, "/v1/schools/join", []byte(`{"join_key": "A1B2C3"}`))
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.JoinSchoolResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "s1", resp.SchoolId)
		assert.Equal(t, "student", resp.Role)
	})

	t.Run("unknown key", func(t *testing.T) {
		m := newMocks()
		m.school.MockJoin = func(domain.UserId, domain.JoinKey) (domain.School, domain.Membership, error) {
			return domain.School{}, domain.Membership{}, internal_errors.NotFoundError("School")
		}

		req := createRequest(t, http.MethodPost, "/v1/schools/join", []byte(`{"join_key": "ZZZZZZ"}`))
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("key of wrong length rejected before the service runs", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/v1/schools/join", []byte(`{"join_key": "AB"}`))
		rr := serve(t, newMocks(), testUser(), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListMySchools(t *testing.T) {
	m := newMocks()
	joined := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	m.membership.MockListForUser = func(userId domain.UserId) (map[domain.SchoolId]domain.Membership, error) {
		return map[domain.SchoolId]domain.Membership{
			"s2": {UserId: userId, SchoolId: "s2", Role: domain.RoleAdmin, JoinedAt: joined},
			"s1": {UserId: userId, SchoolId: "s1", Role: domain.RoleStudent, JoinedAt: joined},
			"s3": {UserId: userId, SchoolId: "s3", Role: domain.RoleStudent, JoinedAt: joined},
		}, nil
	}
	m.school.MockGet = func(id domain.SchoolId) (domain.School, error) {
		if id == "s3" {
			// dangling membership: the school record is gone
			return domain.School{}, internal_errors.NotFoundError("School")
		}
		names := map[domain.SchoolId]string{"s1": "Beta High", "s2": "Alpha High"}
		return domain.School{Id: id, Name: names[id]}, nil
	}

	req := createRequest(t, http.MethodGet, "/v1/schools", nil)
	rr := serve(t, m, testUser(), req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.SchoolListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Schools, 2, "dangling membership must be skipped, not a 500")
	assert.Equal(t, "Alpha High", resp.Schools[0].Name)
	assert.Equal(t, "admin", resp.Schools[0].Role)
	assert.Equal(t, "Beta High", resp.Schools[1].Name)
}

func TestCheckPermission(t *testing.T) {
	t.Run("missing action parameter", func(t *testing.T) {
		req := createRequest(t, http.MethodGet, "/v1/schools/s1/permissions", nil)
		rr := serve(t, newMocks(), testUser(), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("admin may regenerate the join key", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)

		req := createRequest(t, http.MethodGet, "/v1/schools/s1/permissions?action=regenerate_join_key", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.PermissionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Allowed)
		assert.Equal(t, "u1", resp.UserId)
	})

	t.Run("non-member gets allowed false, not an error", func(t *testing.T) {
		m := newMocks()
		m.nonMember()

		req := createRequest(t, http.MethodGet, "/v1/schools/s1/permissions?action=generate_ai_notes", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.PermissionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Allowed)
	})

	t.Run("sandbox override denies content actions", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)

		req := createRequest(t, http.MethodGet, "/v1/schools/"+sandboxSchoolId+"/permissions?action=create_subject", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.PermissionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Allowed)
	})
}

func TestRegenerateJoinKey(t *testing.T) {
	t.Run("admin rotates the key", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)
		m.school.MockRegenerateJoinKey = func(id domain.SchoolId) (domain.JoinKey, error) {
			assert.Equal(t, "s1", id)
			return "X9Y8Z7", nil
		}

		req := createRequest(t, http.MethodPost, "/v1/schools/s1/join_key", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "X9Y8Z7")
	})

	t.Run("teacher is denied with the generic message", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleTeacher)

		req := createRequest(t, http.MethodPost, "/v1/schools/s1/join_key", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Insufficient permissions")
	})

	t.Run("non-member denial is indistinguishable from role denial", func(t *testing.T) {
		m := newMocks()
		m.nonMember()

		req := createRequest(t, http.MethodPost, "/v1/schools/s1/join_key", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Insufficient permissions")
	})
}

func TestSettings(t *testing.T) {
	t.Run("any member may read settings", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleStudent)
		m.school.MockGetSettings = func(id domain.SchoolId) (domain.SchoolSettings, error) {
			return domain.SchoolSettings{SchoolId: id, MinContributions: 7, StudentCooldownHours: 3, TeacherCooldownHours: 0.5}, nil
		}

		req := createRequest(t, http.MethodGet, "/v1/schools/s1/settings", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.SettingsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 7, resp.MinContributions)
		assert.Equal(t, 0.5, resp.TeacherCooldownHours)
	})

	t.Run("only admin may update settings", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleTeacher)

		body := []byte(`{"min_contributions": 3, "student_cooldown_hours": 1, "teacher_cooldown_hours": 1}`)
		req := createRequest(t, http.MethodPut, "/v1/schools/s1/settings", body)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin update passes values through", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)
		var got domain.SchoolSettings
		m.school.MockUpdateSettings = func(settings domain.SchoolSettings) error {
			got = settings
			return nil
		}

		body := []byte(`{"min_contributions": 10, "student_cooldown_hours": 4, "teacher_cooldown_hours": 2}`)
		req := createRequest(t, http.MethodPut, "/v1/schools/s1/settings", body)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "s1", got.SchoolId)
		assert.Equal(t, 10, got.MinContributions)
		assert.Equal(t, 4.0, got.StudentCooldownHours)
	})

	t.Run("zero threshold rejected by validation", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)

		body := []byte(`{"min_contributions": 0, "student_cooldown_hours": 1, "teacher_cooldown_hours": 1}`)
		req := createRequest(t, http.MethodPut, "/v1/schools/s1/settings", body)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMembers(t *testing.T) {
	t.Run("list is sorted by user id", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleStudent)
		m.membership.MockListForSchool = func(schoolId domain.SchoolId) ([]domain.Membership, error) {
			return []domain.Membership{
				{UserId: "zoe", SchoolId: schoolId, Role: domain.RoleStudent},
				{UserId: "ana", SchoolId: schoolId, Role: domain.RoleAdmin},
			}, nil
		}

		req := createRequest(t, http.MethodGet, "/v1/schools/s1/members", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.MemberListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Members, 2)
		assert.Equal(t, "ana", resp.Members[0].UserId)
		assert.Equal(t, "zoe", resp.Members[1].UserId)
	})

	t.Run("promotion requires the promote action", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleTeacher)

		req := createRequest(t, http.MethodPut, "/v1/schools/s1/members/u2", []byte(`{"role": "teacher"}`))
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin promotes a member", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)
		m.membership.MockUpdateRole = func(userId domain.UserId, schoolId domain.SchoolId, newRole domain.Role) error {
			assert.Equal(t, "u2", userId)
			assert.Equal(t, domain.RoleTeacher, newRole)
			return nil
		}

		req := createRequest(t, http.MethodPut, "/v1/schools/s1/members/u2", []byte(`{"role": "teacher"}`))
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)

		req := createRequest(t, http.MethodPut, "/v1/schools/s1/members/u2", []byte(`{"role": "principal"}`))
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("admin removes a member", func(t *testing.T) {
		m := newMocks()
		m.memberAs(domain.RoleAdmin)
		removed := false
		m.membership.MockRemove = func(userId domain.UserId, schoolId domain.SchoolId) error {
			removed = true
			assert.Equal(t, "u2", userId)
			return nil
		}

		req := createRequest(t, http.MethodDelete, "/v1/schools/s1/members/u2", nil)
		rr := serve(t, m, testUser(), req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, removed)
	})
}
