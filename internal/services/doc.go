// Package services implements the business logic layer between the
// command-line and HTTP front ends and the processing packages.
//
// AbsenceService resolves and validates input files, runs the
// dataprocessing pipeline and hands the results to the exporter.
// HealthService backs the health endpoints of the HTTP server.
//
// Services take their collaborators through constructors and log through
// an injected *slog.Logger:
//
//	svc := services.NewAbsenceService(services.AbsenceServiceDeps{
//	    Paths:  paths,
//	    Logger: logger,
//	})
//	result, err := svc.SummarizeFile(ctx, services.SummarizeRequest{InputPath: "export.csv"})
package services
