package openapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Generator builds the OpenAPI 3.0 document for the diagnoses API.
type Generator struct {
	version  string
	baseURL  string
	docsPath string
}

// NewGenerator creates a generator whose UI is served under docsPath and
// fetches the document from docsPath + "/openapi.json".
func NewGenerator(version, baseURL, docsPath string) *Generator {
	return &Generator{version: version, baseURL: baseURL, docsPath: docsPath}
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	clientIDParam := pathParam("clientId", "Client UUID (version 1-5, RFC 4122 variant)")
	idParam := pathParam("id", "Diagnosis UUID")

	paths := map[string]interface{}{
		"/api/diagnoses": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List all diagnoses",
				"description": "Returns every diagnosis ordered by predicted_date, newest first.",
				"operationId": "listDiagnoses",
				"tags":        []string{"Diagnoses"},
				"responses": map[string]interface{}{
					"200": jsonResponse("All diagnoses", map[string]interface{}{
						"type":  "array",
						"items": schemaRef("Diagnosis"),
					}),
					"500": errorResponse("Server error"),
				},
			},
		},
		"/api/diagnoses/{clientId}": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Get the latest diagnosis for a client",
				"operationId": "getLatestDiagnosis",
				"tags":        []string{"Diagnoses"},
				"parameters":  []map[string]interface{}{clientIDParam},
				"responses": map[string]interface{}{
					"200": jsonResponse("Most recent diagnosis", schemaRef("Diagnosis")),
					"400": errorResponse("Invalid client id"),
					"404": errorResponse("Client has no diagnosis"),
					"500": errorResponse("Server error"),
				},
			},
			"post": map[string]interface{}{
				"summary":     "Create a diagnosis for a client",
				"operationId": "createDiagnosis",
				"tags":        []string{"Diagnoses"},
				"parameters":  []map[string]interface{}{clientIDParam},
				"requestBody": requestBody("DiagnosisInput", true),
				"responses": map[string]interface{}{
					"201": jsonResponse("Created", schemaRef("Diagnosis")),
					"400": errorResponse("Invalid client id or missing fields"),
					"500": errorResponse("Server error"),
				},
			},
		},
		"/api/diagnoses/{id}": map[string]interface{}{
			"put": map[string]interface{}{
				"summary":     "Update a diagnosis",
				"description": "Overwrites only the fields present in the body. Explicit null clears a challenge field.",
				"operationId": "updateDiagnosis",
				"tags":        []string{"Diagnoses"},
				"parameters":  []map[string]interface{}{idParam},
				"requestBody": requestBody("DiagnosisUpdate", true),
				"responses": map[string]interface{}{
					"200": jsonResponse("Updated", schemaRef("Diagnosis")),
					"400": errorResponse("Nothing to update"),
					"404": errorResponse("Diagnosis not found"),
					"500": errorResponse("Server error"),
				},
			},
		},
		"/health": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Liveness check",
				"operationId": "health",
				"tags":        []string{"Operations"},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "Service is up"},
				},
			},
		},
		"/health/db": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Database connectivity check",
				"operationId": "healthDB",
				"tags":        []string{"Operations"},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "Database reachable"},
					"503": map[string]interface{}{"description": "Database unreachable"},
				},
			},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Diagnosis API",
			"version":     g.version,
			"description": "Record, challenge and retrieve clinical diagnoses per client",
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": buildComponentSchemas(),
		},
	}
}

func pathParam(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "path",
		"required":    true,
		"description": description,
		"schema":      map[string]string{"type": "string", "format": "uuid"},
	}
}

func schemaRef(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func requestBody(schema string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"required": required,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": schemaRef(schema),
			},
		},
	}
}

func jsonResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": schema,
			},
		},
	}
}

func errorResponse(description string) map[string]interface{} {
	return jsonResponse(description, schemaRef("Error"))
}

func text() map[string]interface{} { return map[string]interface{}{"type": "string"} }

func nullableText() map[string]interface{} {
	return map[string]interface{}{"type": "string", "nullable": true}
}

func buildComponentSchemas() map[string]interface{} {
	return map[string]interface{}{
		"Diagnosis": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":                       map[string]interface{}{"type": "string", "format": "uuid"},
				"client_id":                map[string]interface{}{"type": "string", "format": "uuid"},
				"diagnosis_name":           text(),
				"justification":            text(),
				"challenged_diagnosis":     nullableText(),
				"challenged_justification": nullableText(),
				"predicted_date":           map[string]interface{}{"type": "string", "format": "date-time"},
				"updated_at":               map[string]interface{}{"type": "string", "format": "date-time", "nullable": true},
			},
			"required": []string{"id", "client_id", "diagnosis_name", "justification", "predicted_date"},
		},
		"DiagnosisInput": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"diagnosis_name":           text(),
				"justification":            text(),
				"challenged_diagnosis":     nullableText(),
				"challenged_justification": nullableText(),
			},
			"required": []string{"diagnosis_name", "justification"},
		},
		"DiagnosisUpdate": map[string]interface{}{
			"type":          "object",
			"minProperties": 1,
			"properties": map[string]interface{}{
				"diagnosis_name":           text(),
				"justification":            text(),
				"challenged_diagnosis":     nullableText(),
				"challenged_justification": nullableText(),
			},
		},
		"Error": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"error": text(),
			},
			"required": []string{"error"},
		},
	}
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Diagnosis API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: %q,
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [
        SwaggerUIBundle.presets.apis,
        SwaggerUIBundle.SwaggerUIStandalonePreset
      ],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// SpecPath is where the JSON document is served.
func (g *Generator) SpecPath() string { return g.docsPath + "/openapi.json" }

// RegisterRoutes serves the UI at docsPath and the document beside it.
func (g *Generator) RegisterRoutes(e *echo.Echo) {
	page := fmt.Sprintf(swaggerUIHTML, g.SpecPath())
	e.GET(g.SpecPath(), func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
	e.GET(g.docsPath, func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	})
}
