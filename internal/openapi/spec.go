package openapi

import "github.com/getkin/kin-openapi/openapi3"

// GenerateSpec builds the OpenAPI 3 document for the API key service. The
// surface is small and fixed, so the document is assembled directly rather
// than derived from reflection or annotations.
func GenerateSpec(baseURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "API Key Generator",
			Description: "Issues opaque API keys, validates them, and reports per-key liveness derived from usage history.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		"Response":       responseSchema(),
		"UserKeyStatus":  userKeyStatusSchema(),
		"DashboardReply": dashboardSchema(),
	}
	doc.Components = &components

	responseRef := openapi3.NewSchemaRef("#/components/schemas/Response", nil)
	dashboardRef := openapi3.NewSchemaRef("#/components/schemas/DashboardReply", nil)

	doc.Paths = openapi3.NewPaths()

	doc.Paths.Set("/create", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"keys"},
			Summary:     "Generate an API key",
			Description: "Creates a new opaque API key and returns the plaintext secret. This response is the only place the secret ever appears.",
			OperationID: "createKey",
			Responses:   envelopeResponses(responseRef, "200", "Key generated", "500"),
		},
	})

	doc.Paths.Set("/cekapi", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"keys"},
			Summary:     "Validate an API key",
			Description: "Checks a presented key. A valid key has one usage event recorded as a side effect.",
			OperationID: "checkKey",
			RequestBody: jsonBody(objectSchema(map[string]*openapi3.Schema{
				"apiKey": openapi3.NewStringSchema(),
			}, "apiKey")),
			Responses: envelopeResponses(responseRef, "200", "Key is valid", "400", "401", "500"),
		},
	})

	doc.Paths.Set("/user/save", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"users"},
			Summary:     "Save a user profile",
			Description: "Stores a user profile bound to a valid API key.",
			OperationID: "saveUser",
			RequestBody: jsonBody(objectSchema(map[string]*openapi3.Schema{
				"firstName": openapi3.NewStringSchema(),
				"lastName":  openapi3.NewStringSchema(),
				"email":     openapi3.NewStringSchema(),
				"apiKey":    openapi3.NewStringSchema(),
			}, "apiKey")),
			Responses: envelopeResponses(responseRef, "200", "User saved", "400", "500"),
		},
	})

	doc.Paths.Set("/admin/register", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"admin"},
			Summary:     "Register an admin account",
			OperationID: "registerAdmin",
			RequestBody: jsonBody(credentialsSchema()),
			Responses:   envelopeResponses(responseRef, "200", "Admin registered", "400", "500"),
		},
	})

	doc.Paths.Set("/admin/login", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"admin"},
			Summary:     "Verify admin credentials",
			Description: "Confirms email and password. No session or token is issued.",
			OperationID: "loginAdmin",
			RequestBody: jsonBody(credentialsSchema()),
			Responses:   envelopeResponses(responseRef, "200", "Login successful", "400", "401", "500"),
		},
	})

	doc.Paths.Set("/admin/dashboard", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"admin"},
			Summary:     "Liveness dashboard",
			Description: "Every saved user with their key and its online/offline status over the trailing 30-day usage window.",
			OperationID: "adminDashboard",
			Responses:   envelopeResponses(dashboardRef, "200", "Dashboard rows", "500"),
		},
	})

	return doc
}

func responseSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"success": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"message": &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"apiKey":  &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
			},
			Required: []string{"success"},
		},
	}
}

func userKeyStatusSchema() *openapi3.SchemaRef {
	status := openapi3.NewStringSchema()
	status.Enum = []interface{}{"online", "offline"}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"firstName": &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"lastName":  &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"email":     &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"key":       &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"status":    &openapi3.SchemaRef{Value: status},
			},
		},
	}
}

func dashboardSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"success": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"data": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: openapi3.NewSchemaRef("#/components/schemas/UserKeyStatus", nil),
					},
				},
			},
		},
	}
}

func credentialsSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.Schema{
		"email":    openapi3.NewStringSchema(),
		"password": openapi3.NewStringSchema(),
	}, "email", "password")
}

func objectSchema(props map[string]*openapi3.Schema, required ...string) *openapi3.SchemaRef {
	schemas := openapi3.Schemas{}
	for name, s := range props {
		schemas[name] = &openapi3.SchemaRef{Value: s}
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: schemas,
			Required:   required,
		},
	}
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content:  openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// envelopeResponses builds a Responses map with one success response plus the
// listed failure codes, all sharing the given body schema for success and the
// standard envelope for failures.
func envelopeResponses(successRef *openapi3.SchemaRef, successCode, successDesc string, failureCodes ...string) *openapi3.Responses {
	responses := openapi3.NewResponses()

	desc := successDesc
	responses.Set(successCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(successRef),
		},
	})

	envelopeRef := openapi3.NewSchemaRef("#/components/schemas/Response", nil)
	descriptions := map[string]string{
		"400": "Bad request",
		"401": "Unauthorized",
		"500": "Internal server error",
	}
	for _, code := range failureCodes {
		d := descriptions[code]
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &d,
				Content:     openapi3.NewContentWithJSONSchemaRef(envelopeRef),
			},
		})
	}

	return responses
}
