package shader

import "testing"

const testShader = `
@group(0) @binding(0) var<storage, read_write> data: array<f32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x < arrayLength(&data)) {
        data[gid.x] = data[gid.x] * 2.0;
    }
}
`

func TestCompileWGSL(t *testing.T) {
	words, err := CompileWGSL(testShader)
	if err != nil {
		t.Fatalf("CompileWGSL() error: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("CompileWGSL() returned no code")
	}

	// SPIR-V modules open with the magic number 0x07230203.
	if words[0] != 0x07230203 {
		t.Errorf("first word = %#x, want SPIR-V magic 0x07230203", words[0])
	}
}

func TestCompileWGSL_Invalid(t *testing.T) {
	if _, err := CompileWGSL("fn broken("); err == nil {
		t.Error("CompileWGSL(invalid source) succeeded, want error")
	}
}
