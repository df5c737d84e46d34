package chunks

// GLSL sources for the chunk passes. Face records, chunk descriptors and
// light cubes arrive through the fixed SSBO bindings; each face expands to
// one quad in the vertex shader from gl_VertexID.

const chunkVertexShader = `#version 430

layout(std430, binding = 3) buffer faceBuffer {
	uvec2 faces[];
};

struct ChunkData {
	ivec3 position;
	int voxelSize;
	uint lightMap[216];
};

layout(std430, binding = 7) buffer chunkBuffer {
	ChunkData chunks[];
};

uniform mat4 projectionMatrix;
uniform mat4 viewMatrix;
uniform vec3 modelPosition;
uniform int voxelSize;
uniform int visibilityMask;
uniform int chunkDataIndex;

out vec3 vWorldPos;
flat out uint vBlockType;
flat out uint vModelIndex;
flat out uint vNormal;
flat out uint vBackFace;
flat out int vChunkIndex;
out vec2 vUV;

// Corner offsets per normal direction, CCW as seen from the front side.
const ivec3 cornerTable[6*4] = ivec3[](
	// -X
	ivec3(0,0,0), ivec3(0,0,1), ivec3(0,1,1), ivec3(0,1,0),
	// +X
	ivec3(1,0,0), ivec3(1,1,0), ivec3(1,1,1), ivec3(1,0,1),
	// -Y
	ivec3(0,0,0), ivec3(1,0,0), ivec3(1,0,1), ivec3(0,0,1),
	// +Y
	ivec3(0,1,0), ivec3(0,1,1), ivec3(1,1,1), ivec3(1,1,0),
	// -Z
	ivec3(0,0,0), ivec3(0,1,0), ivec3(1,1,0), ivec3(1,0,0),
	// +Z
	ivec3(0,0,1), ivec3(1,0,1), ivec3(1,1,1), ivec3(0,1,1)
);

void main() {
	uint faceID = uint(gl_VertexID) >> 2u;
	uint corner = uint(gl_VertexID) & 3u;
	uvec2 face = faces[faceID];

	uint x = face.x & 31u;
	uint y = (face.x >> 5u) & 31u;
	uint z = (face.x >> 10u) & 31u;
	uint backFace = (face.x >> 15u) & 1u;
	uint normal = (face.x >> 16u) & 7u;
	vBlockType = face.y & 0xFFFFu;
	vModelIndex = (face.y >> 16u) & 0xFFFFu;

	// The exposed cell carries the face; the quad itself sits on the cell
	// boundary facing the solid block.
	uint quadDir = backFace == 1u ? normal : (normal ^ 1u);
	ivec3 offset = cornerTable[int(quadDir) * 4 + int(corner)];

	// Octant culling: collapse quads of hidden octants.
	int octant = int(x >> 4u) | int(y >> 4u) << 1 | int(z >> 4u) << 2;
	if ((visibilityMask & (1 << octant)) == 0) {
		gl_Position = vec4(0.0/0.0);
		return;
	}

	vec3 cell = vec3(float(x), float(y), float(z));
	vec3 local = (cell + vec3(offset)) * float(voxelSize);
	vec3 pos = modelPosition + local;

	vWorldPos = pos;
	vNormal = normal;
	vBackFace = backFace;
	vChunkIndex = chunkDataIndex;
	vUV = vec2(float((corner + 1u) >> 1u & 1u), float(corner >> 1u));

	gl_Position = projectionMatrix * viewMatrix * vec4(pos, 1.0);
}
`

const chunkFragmentShader = `#version 430

struct ChunkData {
	ivec3 position;
	int voxelSize;
	uint lightMap[216];
};

layout(std430, binding = 7) buffer chunkBuffer {
	ChunkData chunks[];
};

layout(std430, binding = 8) buffer lightBuffer {
	uint lightCubes[];
};

uniform sampler2DArray texture_sampler;
uniform sampler2DArray emissionSampler;
uniform vec3 ambientLight;
uniform struct Fog {
	vec3 color;
	float density;
} fog;
uniform int voxelSize;

in vec3 vWorldPos;
flat in uint vBlockType;
flat in uint vModelIndex;
flat in uint vNormal;
flat in uint vBackFace;
flat in int vChunkIndex;
in vec2 vUV;

layout(location = 0) out vec4 fragColor;
layout(location = 1) out ivec4 fragData;

vec3 unpackLight(uint word, float scale) {
	return vec3(
		float((word >> 25u) & 31u),
		float((word >> 20u) & 31u),
		float((word >> 15u) & 31u)) / 31.0 * scale +
		vec3(
		float((word >> 10u) & 31u),
		float((word >> 5u) & 31u),
		float(word & 31u)) / 31.0;
}

uint sampleLightWord(ivec3 cell) {
	ivec3 coarse = clamp((cell + 8) >> 3, 0, 5);
	uint slot = chunks[vChunkIndex].lightMap[(coarse.x * 6 + coarse.y) * 6 + coarse.z];
	ivec3 fine = clamp(cell + 8 - coarse * 8, 0, 7);
	return lightCubes[slot * 512u + uint((fine.x * 8 + fine.y) * 8 + fine.z)];
}

void main() {
	ivec3 cell = ivec3(floor((vWorldPos - vec3(chunks[vChunkIndex].position)) / float(voxelSize)));
	uint word = sampleLightWord(cell);
	vec3 light = unpackLight(word, 1.0) * ambientLight + unpackLight(word, 0.0);

	vec4 tex = texture(texture_sampler, vec3(vUV, float(vBlockType)));
	vec3 emission = texture(emissionSampler, vec3(vUV, float(vBlockType))).rgb;
	vec3 color = tex.rgb * clamp(light, 0.0, 1.0) + emission;

	float dist = length(vWorldPos);
	float fogFactor = exp(-fog.density * dist);
	color = mix(fog.color, color, fogFactor);

	fragColor = vec4(color, tex.a);
	fragData = ivec4(int(vBlockType), int(vModelIndex), int(vNormal), int(vBackFace));
}
`

// The voxel-model pass shares the sources; its shader is linked separately
// so model-specific uniforms stay isolated.
const voxelVertexShader = chunkVertexShader
const voxelFragmentShader = chunkFragmentShader

const transparentFragmentShader = `#version 430

uniform sampler2DArray texture_sampler;
uniform vec3 ambientLight;
uniform struct Fog {
	vec3 color;
	float density;
} fog;

in vec3 vWorldPos;
flat in uint vBlockType;
flat in uint vNormal;
flat in uint vBackFace;
in vec2 vUV;

layout(location = 0) out vec4 fragColor;

void main() {
	vec4 tex = texture(texture_sampler, vec3(vUV, float(vBlockType)));
	vec3 color = tex.rgb * ambientLight;
	float dist = length(vWorldPos);
	color = mix(fog.color, color, exp(-fog.density * dist));
	float alpha = vBackFace == 1u ? tex.a * 0.5 : tex.a;
	fragColor = vec4(color, alpha);
}
`

// Fullscreen composition of the deferred targets: the integer target
// resolves per-fragment block data into procedural material colors.
const composeVertexShader = `#version 430
out vec2 uv;
void main() {
	vec2 pos = vec2(float(gl_VertexID & 1), float(gl_VertexID >> 1));
	uv = pos;
	gl_Position = vec4(pos * 2.0 - 1.0, 0.0, 1.0);
}
`

const composeFragmentShader = `#version 430

uniform sampler2D colorSampler;
uniform isampler2D dataSampler;

layout(std430, binding = 5) buffer materialBuffer {
	uint materials[];
};
layout(std430, binding = 6) buffer paletteBuffer {
	uint palette[];
};

in vec2 uv;
out vec4 fragColor;

vec3 paletteColor(uint idx) {
	uint c = palette[idx & 255u];
	return vec3(float(c & 255u), float((c >> 8u) & 255u), float((c >> 16u) & 255u)) / 255.0;
}

void main() {
	vec4 color = texture(colorSampler, uv);
	ivec4 data = texture(dataSampler, uv);
	if (data.x > 0) {
		uint mat = materials[uint(data.x) & 0xFFFFu];
		color.rgb *= mix(vec3(1.0), paletteColor(mat), 0.25);
	}
	fragColor = vec4(color.rgb, 1.0);
}
`

const selectionVertexShader = `#version 430
layout(location = 0) in vec3 position;
uniform mat4 projectionMatrix;
uniform mat4 viewMatrix;
uniform vec3 modelPosition;
void main() {
	gl_Position = projectionMatrix * viewMatrix * vec4(modelPosition + position, 1.0);
}
`

const selectionFragmentShader = `#version 430
out vec4 fragColor;
void main() {
	fragColor = vec4(0.05, 0.05, 0.05, 1.0);
}
`
