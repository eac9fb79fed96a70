package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the gateway.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>docgate - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// OpenAPI document for the document routes and the operational endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docgate", "version": "v0.1.0" },
  "components": {
    "parameters": {
      "type": { "name": "type", "in": "path", "required": true, "schema": {"type":"string"} },
      "id": { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} },
      "fields": { "name": "fields", "in": "query", "style": "form", "explode": true, "schema": {"type":"object","additionalProperties":{"type":"string"}} }
    },
    "schemas": {
      "Error": { "type": "object", "properties": { "error": {"type":"string"} } },
      "Document": { "type": "object", "properties": { "_id": {"type":"string"} }, "additionalProperties": true }
    },
    "responses": {
      "BadRequest": { "description": "invalid type, id or fields", "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Error"} } } },
      "ServerError": { "description": "serialization or engine failure", "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Error"} } } }
    }
  },
  "paths": {
    "/{type}/all": {
      "get": {
        "summary": "List every document of a type",
        "parameters": [ {"$ref":"#/components/parameters/type"} ],
        "responses": {
          "200": { "description": "documents with their _id", "content": { "application/json": { "schema": {"type":"array","items":{"$ref":"#/components/schemas/Document"}} } } },
          "400": {"$ref":"#/components/responses/BadRequest"},
          "500": {"$ref":"#/components/responses/ServerError"}
        }
      }
    },
    "/delete/{type}/{id}": {
      "get": {
        "summary": "Delete a document by id (succeeds when nothing matches)",
        "parameters": [ {"$ref":"#/components/parameters/type"}, {"$ref":"#/components/parameters/id"} ],
        "responses": { "200": { "description": "ok", "content": { "text/plain": { "schema": {"type":"string","example":"ok"} } } }, "400": {"$ref":"#/components/responses/BadRequest"}, "500": {"$ref":"#/components/responses/ServerError"} }
      }
    },
    "/insert/{type}": {
      "get": {
        "summary": "Insert a document built from the query parameters",
        "parameters": [ {"$ref":"#/components/parameters/type"}, {"$ref":"#/components/parameters/fields"} ],
        "responses": { "200": { "description": "engine-assigned id", "content": { "text/plain": { "schema": {"type":"string"} } } }, "400": {"$ref":"#/components/responses/BadRequest"}, "500": {"$ref":"#/components/responses/ServerError"} }
      },
      "post": {
        "summary": "Insert a document from a JSON object body",
        "parameters": [ {"$ref":"#/components/parameters/type"} ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object"} } } },
        "responses": { "200": { "description": "engine-assigned id", "content": { "text/plain": { "schema": {"type":"string"} } } }, "400": {"$ref":"#/components/responses/BadRequest"}, "500": {"$ref":"#/components/responses/ServerError"} }
      }
    },
    "/update/{type}/{id}": {
      "get": {
        "summary": "Update or create a document from the query parameters",
        "parameters": [ {"$ref":"#/components/parameters/type"}, {"$ref":"#/components/parameters/id"}, {"$ref":"#/components/parameters/fields"} ],
        "responses": { "200": { "description": "update response description", "content": { "text/plain": { "schema": {"type":"string"} } } }, "400": {"$ref":"#/components/responses/BadRequest"}, "500": {"$ref":"#/components/responses/ServerError"} }
      },
      "post": {
        "summary": "Update or create a document from a JSON object body",
        "parameters": [ {"$ref":"#/components/parameters/type"}, {"$ref":"#/components/parameters/id"} ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object"} } } },
        "responses": { "200": { "description": "update response description", "content": { "text/plain": { "schema": {"type":"string"} } } }, "400": {"$ref":"#/components/responses/BadRequest"}, "500": {"$ref":"#/components/responses/ServerError"} }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition format" } } } }
  }
}`
