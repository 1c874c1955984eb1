package stack

import (
	"fmt"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
)

// compileDatabase emits the database and application-user bootstrap.
// Credentials travel only through the child process environment; the SQL
// references them via shell expansion so no password ever appears in an
// argument vector or in captured output.
func (c *Compiler) compileDatabase(graph *step.Graph, m *manifest.Manifest, after []step.ID) ([]step.ID, error) {
	db := m.Database
	if db == nil {
		return nil, nil
	}

	createID := step.MustNewID("database:create:" + db.Name)
	createSQL := fmt.Sprintf(
		"mysql -u root -e 'CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4'", db.Name)
	create := step.New(createID,
		// Socket auth as root answers the query on a fresh install; once a
		// root password is set the probe reports NotSatisfied and the
		// IF NOT EXISTS statement makes the re-run harmless.
		probe.OutputContains{
			Runner:  c.runner,
			Command: "sh",
			Args:    []string{"-c", fmt.Sprintf("mysql -u root -N -B -e \"SHOW DATABASES LIKE '%s'\"", db.Name)},
			Marker:  db.Name,
		},
		step.CommandAction{
			Runner:    c.runner,
			Command:   "sh",
			Args:      []string{"-c", createSQL},
			SecretEnv: map[string]string{"MYSQL_PWD": db.RootSecret},
		},
	).
		WithSummary("create database " + db.Name).
		WithDependsOn(after...).
		WithSecrets(db.RootSecret).
		WithPrivileged(true)
	if err := graph.Add(c.finish(create)); err != nil {
		return nil, err
	}

	userID := step.MustNewID("database:user:" + db.User)
	// The user's password is expanded by the shell from the injected
	// environment, keeping it out of argv.
	userSQL := fmt.Sprintf(
		`mysql -u root -e "CREATE USER IF NOT EXISTS '%[1]s'@'localhost' IDENTIFIED BY '$HOIST_DB_USER_PASSWORD'; `+
			"GRANT ALL PRIVILEGES ON \\`%[2]s\\`.* TO '%[1]s'@'localhost'; FLUSH PRIVILEGES\"",
		db.User, db.Name)
	user := step.New(userID,
		probe.OutputContains{
			Runner:  c.runner,
			Command: "sh",
			Args:    []string{"-c", fmt.Sprintf("mysql -u root -N -B -e \"SELECT User FROM mysql.user WHERE User = '%s'\"", db.User)},
			Marker:  db.User,
		},
		step.CommandAction{
			Runner:  c.runner,
			Command: "sh",
			Args:    []string{"-c", userSQL},
			SecretEnv: map[string]string{
				"MYSQL_PWD":              db.RootSecret,
				"HOIST_DB_USER_PASSWORD": db.UserSecret,
			},
		},
	).
		WithSummary("create database user " + db.User).
		WithDependsOn(createID).
		WithSecrets(db.RootSecret, db.UserSecret).
		WithPrivileged(true)
	if err := graph.Add(c.finish(user)); err != nil {
		return nil, err
	}

	return []step.ID{createID, userID}, nil
}
