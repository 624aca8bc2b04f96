package api

import (
	"github.com/sfrosal/portfolio-api/auth"
	"github.com/sfrosal/portfolio-api/database"
)

// initializeHandlers creates and returns all handlers organized in a
// routeHandlers struct
func initializeHandlers(db database.Database, codec *auth.Codec, cookies cookiePolicy, up uploader, m mailer, imageLimit, videoLimit int64) *routeHandlers {
	return &routeHandlers{
		authHandler:    newAuthHandler(db.UserRepo(), codec, cookies),
		projectHandler: newProjectHandler(db.ProjectRepo(), db.TechnologyRepo()),
		uploadHandler:  newUploadHandler(up, imageLimit, videoLimit),
		contactHandler: newContactHandler(m),
	}
}
