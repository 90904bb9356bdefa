package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/archsketch/engine/internal/config"
	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
	"github.com/archsketch/engine/internal/infra"
	"github.com/archsketch/engine/internal/layout"
	"github.com/archsketch/engine/internal/logger"
	"github.com/archsketch/engine/internal/render"
	"github.com/archsketch/engine/internal/result"
)

// Operations accepted in LambdaEvent.Operation.
const (
	opTerraform = "terraform"
	opSVG       = "svg"
	opPNG       = "png"
	opLayout    = "layout"
)

// LambdaEvent is the invocation payload (e.g. from API Gateway).
type LambdaEvent struct {
	Body       string `json:"body"` // diagram JSON (raw or base64 if isBase64)
	IsBase64   bool   `json:"isBase64,omitempty"`
	Operation  string `json:"operation,omitempty"` // terraform (default), svg, png, layout
	EmitTfvars *bool  `json:"emitTfvars,omitempty"`
	Region     string `json:"region,omitempty"`
}

// LambdaResponse is returned to the client (API Gateway).
type LambdaResponse struct {
	StatusCode int               `json:"statusCode"`
	Success    bool              `json:"success"`
	Errors     []result.Error    `json:"errors,omitempty"`
	Warnings   []result.Warning  `json:"warnings,omitempty"`
	Files      map[string]string `json:"files,omitempty"` // filename -> content (base64)
}

// APIGatewayResponse is the shape expected by API Gateway proxy integration (body = JSON string).
type APIGatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type app struct {
	cfg *config.Config
	log *slog.Logger
}

func (a *app) handle(ctx context.Context, event LambdaEvent) (APIGatewayResponse, error) {
	out := LambdaResponse{StatusCode: 200}

	body := event.Body
	if event.IsBase64 {
		dec, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return wrap(fail(out, 400, "invalid_input", "invalid base64 body: "+err.Error())), nil
		}
		body = string(dec)
	}

	doc, err := diagram.Import([]byte(body))
	if err != nil {
		out.StatusCode = 400
		var verrs diagram.ValidationErrors
		if stderrors.As(err, &verrs) {
			for _, ve := range verrs {
				out.Errors = append(out.Errors, result.Error{
					Type: ve.Type, Severity: ve.Severity, ElementID: ve.ElementID,
					Message: ve.Message, Suggestion: ve.Suggestion,
				})
			}
			return wrap(out), nil
		}
		return wrap(fail(out, 400, "invalid_json", errors.UserMessage(err))), nil
	}

	op := event.Operation
	if op == "" {
		op = opTerraform
	}
	a.log.Info("request", "operation", op, "nodes", len(doc.Nodes), "links", len(doc.Links))

	switch op {
	case opTerraform:
		return wrap(a.terraform(doc, event, out)), nil
	case opSVG, opPNG:
		var buf bytes.Buffer
		write := render.SVG
		if op == opPNG {
			write = render.PNG
		}
		if err := write(&buf, doc, a.cfg.Export); err != nil {
			return wrap(fail(out, 422, "render_error", errors.UserMessage(err))), nil
		}
		out.Success = true
		out.Files = map[string]string{"diagram." + op: base64.StdEncoding.EncodeToString(buf.Bytes())}
		return wrap(out), nil
	case opLayout:
		laid, err := layout.AssignLayers(doc, a.cfg.Layout)
		if err != nil {
			return wrap(fail(out, 422, "dependency_error", errors.UserMessage(err))), nil
		}
		laid = layout.Layered(laid.Nodes, a.cfg.Layout).Apply(laid)
		data, err := diagram.Export(laid)
		if err != nil {
			return wrap(fail(out, 500, "internal_error", err.Error())), nil
		}
		out.Success = true
		out.Files = map[string]string{"diagram.json": base64.StdEncoding.EncodeToString(data)}
		return wrap(out), nil
	default:
		return wrap(fail(out, 400, "invalid_input", "unknown operation: "+op)), nil
	}
}

func (a *app) terraform(doc diagram.Document, event LambdaEvent, out LambdaResponse) LambdaResponse {
	opts := a.cfg.Terraform
	opts.Logger = a.log
	if event.EmitTfvars != nil {
		opts.EmitTfvars = *event.EmitTfvars
	}
	if event.Region != "" {
		opts.Region = event.Region
	}
	res, err := infra.New(opts).Export(&doc)
	if err != nil {
		return fail(out, 500, "export_error", err.Error())
	}

	out.Success = res.Success
	out.Errors = res.Errors
	out.Warnings = res.Warnings
	if res.Success && len(res.TerraformFiles) > 0 {
		out.Files = make(map[string]string)
		for name, content := range res.TerraformFiles {
			out.Files[name] = base64.StdEncoding.EncodeToString(content)
		}
	}
	if !res.Success {
		out.StatusCode = 422
	}
	return out
}

func fail(out LambdaResponse, status int, typ, msg string) LambdaResponse {
	out.StatusCode = status
	out.Success = false
	out.Errors = append(out.Errors, result.Error{Type: typ, Severity: "error", Message: msg})
	return out
}

func wrap(out LambdaResponse) APIGatewayResponse {
	bodyBytes, _ := json.Marshal(out)
	return APIGatewayResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}

func main() {
	log := logger.New()
	cfg, err := config.Load(nil, "")
	if err != nil {
		log.Error("load config", "error", err)
		d := config.Default()
		cfg = &d
	}
	a := &app{cfg: cfg, log: log}
	lambda.Start(a.handle)
}
