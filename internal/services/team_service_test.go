package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/repository"
	"github.com/yukikurage/collab-api/internal/testutil"
)

type workspace struct {
	db         *gorm.DB
	teams      *TeamService
	projects   *ProjectService
	dispatcher *Dispatcher
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	db := testutil.NewDB(t)
	log := zap.NewNop().Sugar()
	dispatcher := NewDispatcher(log, 0)

	users := repository.NewUserRepository(db)
	teams := repository.NewTeamRepository(db)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)
	activity := repository.NewActivityRepository(db)

	return &workspace{
		db:         db,
		teams:      NewTeamService(teams, projects, users, log),
		projects:   NewProjectService(projects, teams, tasks, activity, dispatcher),
		dispatcher: dispatcher,
	}
}

func TestCreateTeam_SkipsUnknownMembers(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	pm := testutil.CreateUser(t, ws.db, "Pat", "pat@example.com", models.RoleProjectManager)
	u1 := testutil.CreateUser(t, ws.db, "Una", "una@example.com", models.RoleTeamMember)

	team, err := ws.teams.CreateTeam(ctx, CreateTeamInput{
		Name:      " Core ",
		MemberIDs: []string{u1.ID, "ghost", u1.ID},
		Creator:   pm,
	})
	require.NoError(t, err)
	assert.Equal(t, "Core", team.Name)
	assert.Equal(t, pm.ID, team.CreatorID)
	require.Len(t, team.Members, 1)
	assert.Equal(t, "Una", team.Members[0].User.Name)

	_, err = ws.teams.CreateTeam(ctx, CreateTeamInput{Name: "", Creator: pm})
	assert.ErrorIs(t, err, apierrors.ErrValidation)
}

func TestListTeamsForUser_CreatorOrMember(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	pm := testutil.CreateUser(t, ws.db, "Pat", "pat@example.com", models.RoleProjectManager)
	u1 := testutil.CreateUser(t, ws.db, "Una", "una@example.com", models.RoleTeamMember)
	u2 := testutil.CreateUser(t, ws.db, "Ugo", "ugo@example.com", models.RoleTeamMember)

	owned := testutil.CreateTeam(t, ws.db, "Owned", pm.ID)
	joined := testutil.CreateTeam(t, ws.db, "Joined", u2.ID, pm.ID)
	testutil.CreateTeam(t, ws.db, "Other", u2.ID, u1.ID)
	testutil.CreateProject(t, ws.db, "", "A", owned.ID)
	testutil.CreateProject(t, ws.db, "", "B", owned.ID)

	teams, counts, err := ws.teams.ListTeamsForUser(ctx, pm.ID)
	require.NoError(t, err)

	names := make([]string, len(teams))
	for i, team := range teams {
		names[i] = team.Name
	}
	assert.ElementsMatch(t, []string{"Owned", "Joined"}, names)
	assert.Equal(t, int64(2), counts[owned.ID])
	assert.Equal(t, int64(0), counts[joined.ID])
}

func TestGetTeam(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	pm := testutil.CreateUser(t, ws.db, "Pat", "pat@example.com", models.RoleProjectManager)
	u1 := testutil.CreateUser(t, ws.db, "Una", "una@example.com", models.RoleTeamMember)
	team := testutil.CreateTeam(t, ws.db, "Core", pm.ID, u1.ID)
	testutil.CreateProject(t, ws.db, "P1", "Apollo", team.ID)

	got, err := ws.teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pat", got.Creator.Name)
	require.Len(t, got.Members, 1)
	assert.Equal(t, "Una", got.Members[0].User.Name)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, "Apollo", got.Projects[0].Name)

	_, err = ws.teams.GetTeam(ctx, "missing")
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestCreateProject_LogsActivity(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	pm := testutil.CreateUser(t, ws.db, "Pat", "pat@example.com", models.RoleProjectManager)
	team := testutil.CreateTeam(t, ws.db, "Core", pm.ID)

	project, err := ws.projects.CreateProject(ctx, CreateProjectInput{Name: "Apollo", TeamID: team.ID, Actor: pm})
	require.NoError(t, err)
	ws.dispatcher.Wait()

	assert.Equal(t, models.ProjectStatusActive, project.Status)
	assert.Equal(t, "Core", project.Team.Name)

	var logs []models.ActivityLog
	require.NoError(t, ws.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "Project Created", logs[0].Action)
	assert.Equal(t, models.EntityProject, logs[0].EntityType)
	assert.Equal(t, project.ID, logs[0].EntityID)
	assert.Equal(t, "Apollo", logs[0].Details["projectName"])
}

func TestCreateProject_Errors(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()
	pm := testutil.CreateUser(t, ws.db, "Pat", "pat@example.com", models.RoleProjectManager)
	team := testutil.CreateTeam(t, ws.db, "Core", pm.ID)

	_, err := ws.projects.CreateProject(ctx, CreateProjectInput{Name: "X", TeamID: "missing", Actor: pm})
	assert.ErrorIs(t, err, apierrors.ErrNotFound)

	_, err = ws.projects.CreateProject(ctx, CreateProjectInput{Name: "X", TeamID: team.ID, Status: "archived", Actor: pm})
	assert.ErrorIs(t, err, apierrors.ErrValidation)

	_, err = ws.projects.CreateProject(ctx, CreateProjectInput{TeamID: team.ID, Actor: pm})
	assert.ErrorIs(t, err, apierrors.ErrValidation)
}

func TestProjectsForUserAndDetail(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	pm := testutil.CreateUser(t, ws.db, "Pat", "pat@example.com", models.RoleProjectManager)
	u1 := testutil.CreateUser(t, ws.db, "Una", "una@example.com", models.RoleTeamMember)
	outsider := testutil.CreateUser(t, ws.db, "Oz", "oz@example.com", models.RoleTeamMember)
	team := testutil.CreateTeam(t, ws.db, "Core", pm.ID, u1.ID)
	testutil.CreateProject(t, ws.db, "P1", "Apollo", team.ID)
	testutil.CreateTask(t, ws.db, "T1", "One", "P1", models.TaskStatusTodo, u1.ID)
	testutil.CreateTask(t, ws.db, "T2", "Two", "P1", models.TaskStatusCompleted)

	projects, counts, err := ws.projects.ListProjectsForUser(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Core", projects[0].Team.Name)
	assert.Equal(t, int64(2), counts["P1"])

	none, _, err := ws.projects.ListProjectsForUser(ctx, outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	detail, err := ws.projects.GetProject(ctx, "P1")
	require.NoError(t, err)
	assert.Len(t, detail.Tasks, 2)
	require.Len(t, detail.Team.Members, 1)
	assert.Equal(t, "Una", detail.Team.Members[0].User.Name)

	_, err = ws.projects.GetProject(ctx, "P9")
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}
