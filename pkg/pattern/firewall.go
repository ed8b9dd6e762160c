// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pattern

import "regexp"

const FirewallVersion = "firewall-2025.1"

// package names may carry an apt style =version pin
var firewallRules = []Rule{
	MustRule(Package, `^iptables(=\S+)?$`, "iptables package"),
	MustRule(Package, `^ipset(=\S+)?$`, "ipset package"),
	MustRule(Package, `^iproute2(=\S+)?$`, "iproute2 package"),
	MustRule(Package, `^dnsutils(=\S+)?$`, "dnsutils package"),
	MustRule(Package, `^aggregate(=\S+)?$`, "aggregate package"),

	MustRule(Capability, `(?i)^--cap-add=NET_ADMIN$`, "NET_ADMIN capability flag"),
	MustRule(Capability, `(?i)^--cap-add=NET_RAW$`, "NET_RAW capability flag"),

	MustRule(ScriptName, `^init-firewall\.sh$`, "init-firewall.sh script"),
	MustRule(ScriptName, `^[\w.-]*firewall[\w.-]*\.sh$`, "firewall shell script"),

	MustRule(JSONKey, `(?i)^--cap-add=NET_ADMIN$`, "NET_ADMIN capability in runArgs"),
	MustRule(JSONKey, `(?i)^--cap-add=NET_RAW$`, "NET_RAW capability in runArgs"),
	MustRule(JSONKey, `^postStartCommand:.*firewall`, "postStartCommand running the firewall"),
	MustRule(JSONKey, `^waitFor:\s*postStartCommand$`, "waitFor postStartCommand").RequiresMember("postStartCommand"),

	MustRule(SectionMarker, `(?i)^\s*#\s*copy\s+and\s+set\s+up\s+firewall\s+script\s*$`, "firewall setup section"),
}

// 🔥 DefaultFirewall returns the built-in catalog for the devcontainer firewall feature
func DefaultFirewall() *Catalog {
	markers := []LivenessMarker{
		{
			Description: "base image directive",
			Files:       "**/Dockerfile*",
			Regexp:      regexp.MustCompile(`(?mi)^\s*FROM\s+\S+`),
		},
		mustJSONPathMarker("container name", "**/devcontainer.json", "$.name"),
		{
			Description: "build or image definition",
			Files:       "**/devcontainer.json",
			Regexp:      regexp.MustCompile(`"(build|image|dockerFile|dockerComposeFile)"\s*:`),
		},
	}
	c, err := NewCatalog(FirewallVersion, firewallRules, markers)
	if err != nil {
		panic(err)
	}
	return c
}

func mustJSONPathMarker(description, files, path string) LivenessMarker {
	m, err := NewJSONPathMarker(description, files, path)
	if err != nil {
		panic(err)
	}
	return m
}
