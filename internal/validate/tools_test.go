package validate

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"longcatnode/internal/core"
)

func TestParseToolSpecs(t *testing.T) {
	specs := []core.ToolSpec{
		{Name: "get_weather", Description: "Get weather", Parameters: `{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}`},
		{Name: "  now  ", Parameters: ""},
	}

	defs, err := ParseToolSpecs(specs, &core.NopLogger{})
	if err != nil {
		t.Fatalf("不应该有错误: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("期望2个工具，实际 %d 个", len(defs))
	}
	if defs[0].Name != "get_weather" || defs[0].Description != "Get weather" {
		t.Errorf("第一个工具解析不正确: %+v", defs[0])
	}
	schema, ok := defs[0].Parameters.(map[string]any)
	if !ok || schema["type"] != "object" {
		t.Errorf("schema应解析为对象: %#v", defs[0].Parameters)
	}
	if defs[1].Name != "now" {
		t.Errorf("工具名应去除空格，实际 %q", defs[1].Name)
	}
	empty, ok := defs[1].Parameters.(map[string]any)
	if !ok || empty["type"] != core.SchemaTypeObject {
		t.Errorf("空schema应默认为空对象schema: %#v", defs[1].Parameters)
	}
}

func TestParseToolSpecs_Empty(t *testing.T) {
	defs, err := ParseToolSpecs(nil, &core.NopLogger{})
	if err != nil || defs != nil {
		t.Errorf("空列表应返回nil且无错误，实际 %v, %v", defs, err)
	}
}

func TestParseToolSpecs_MalformedSchema(t *testing.T) {
	specs := []core.ToolSpec{
		{Name: "ok", Parameters: `{}`},
		{Name: "broken", Parameters: `{not json`},
	}
	defs, err := ParseToolSpecs(specs, &core.NopLogger{})
	if err == nil {
		t.Fatal("非法JSON schema应返回错误")
	}
	if defs != nil {
		t.Error("出错时不应返回部分结果")
	}
	var schemaErr *core.MalformedToolSchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("期望 MalformedToolSchemaError，实际 %T", err)
	}
	if schemaErr.Tool != "broken" || schemaErr.Index != 1 {
		t.Errorf("错误应指向第二个工具: %+v", schemaErr)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("错误信息应包含工具名: %s", err.Error())
	}
}

func TestParseToolSpecs_MissingName(t *testing.T) {
	_, err := ParseToolSpecs([]core.ToolSpec{{Name: "   ", Parameters: `{}`}}, &core.NopLogger{})
	if !errors.Is(err, core.ErrToolNameRequired) {
		t.Fatalf("期望 ErrToolNameRequired，实际 %v", err)
	}
	if core.ErrorTypeName(err) != core.ErrorTypeMalformedToolSchema {
		t.Errorf("错误类型应为 %s", core.ErrorTypeMalformedToolSchema)
	}
}

func TestIsValidToolName(t *testing.T) {
	tests := []struct {
		name, input string
		expected    bool
	}{
		{"合法名称", "get_weather", true},
		{"带横线", "get-weather-2", true},
		{"带空格", "get weather", false},
		{"带点", "get.weather", false},
		{"中文字符", "天气", false},
		{"超长名称", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := isValidToolName(tt.input); result != tt.expected {
				t.Errorf("isValidToolName(%q) = %v，期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidateToolCall(t *testing.T) {
	call := func(id any, function any) map[string]any {
		return map[string]any{"id": id, "type": "function", "function": function}
	}
	tests := []struct {
		name    string
		call    any
		wantErr bool
	}{
		{"合法调用", call("call_1", map[string]any{"name": "f", "arguments": `{"a":1}`}), false},
		{"空参数", call("call_1", map[string]any{"name": "f"}), false},
		{"缺少ID", call("", map[string]any{"name": "f"}), true},
		{"数字ID", call(float64(7), map[string]any{"name": "f"}), true},
		{"缺少函数名", call("call_1", map[string]any{}), true},
		{"缺少 function", call("call_1", nil), true},
		{"参数非JSON", call("call_1", map[string]any{"name": "f", "arguments": "{oops"}), true},
		{"参数为对象", call("call_1", map[string]any{"name": "f", "arguments": map[string]any{"a": float64(1)}}), true},
		{"非对象", "oops", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToolCall(tt.call)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateToolCall() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBinary(t *testing.T) {
	valid := base64.StdEncoding.EncodeToString([]byte("hello"))
	tests := []struct {
		name    string
		binary  map[string]core.BinaryData
		wantErr bool
	}{
		{"无附件", nil, false},
		{"合法附件", map[string]core.BinaryData{"data": {Data: valid, MimeType: "text/plain"}}, false},
		{"缺少mimeType", map[string]core.BinaryData{"data": {Data: valid}}, true},
		{"非法base64", map[string]core.BinaryData{"data": {Data: "!!!", MimeType: "text/plain"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBinary(tt.binary)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBinary() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
