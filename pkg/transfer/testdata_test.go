package transfer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/David-Botos/content-migrate/pkg/model"
)

const tipDump = `-- legacy export
INSERT INTO tips VALUES
('t1','Composter en appartement','Un bac, des vers, et c''est parti','u1','2021-03-04 10:00:00','["Déchets"]','compost.png','','true'),
('t2','Brouillon','pas fini','u1','2021-03-05','[]','','','false'),
('t3','Couper la veille','Économiser, simplement','ghost','','{Énergie,Eau}','','',null);
`

const actorDump = `INSERT INTO actors VALUES
('a1','Asso Verte','Une association','u1','2020-05-01','["Association"]','{"lat":2.3522,"lng":48.8566,"address":"211 Avenue Jean Jaurès, 75019 Paris"}','211 Avenue Jean Jaurès, 75019 Paris','contact@verte.fr','0102030405','https://verte.fr'),
('a2','Incomplet');
`

const usersExport = `[
  {"id":"u1","email":"alice@example.fr","encrypted_password":"$2a$10$x","created_at":"2019-01-01T00:00:00Z","updated_at":"2019-06-01T00:00:00Z"},
  {"id":"u2","email":"bob@example.fr","encrypted_password":"$2a$10$y","created_at":1577836800,"updated_at":null},
  {"id":"u3","email":"","encrypted_password":"","created_at":"","updated_at":""}
]`

type fixture struct {
	dir       string
	dumpFiles map[model.EntityType]string
	usersFile string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir: dir,
		dumpFiles: map[model.EntityType]string{
			model.EntityTip:   writeFile(t, dir, "tip.sql", tipDump),
			model.EntityActor: writeFile(t, dir, "actor.sql", actorDump),
		},
		usersFile: writeFile(t, dir, "users.json", usersExport),
	}
	return f
}

func (f fixture) options() Options {
	return Options{
		DumpFiles: f.dumpFiles,
		UsersFile: f.usersFile,
		Entities:  []model.EntityType{model.EntityTip, model.EntityActor},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
