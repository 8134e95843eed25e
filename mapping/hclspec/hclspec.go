package hclspec

// File is the HCL form of the mapping table:
//
//	mapping "Example Mod" {
//	  api = "example-mod-api"
//	}
type File struct {
	Mappings []Mapping `hcl:"mapping,block"`
}

type Mapping struct {
	ExpectedName string `hcl:"expected,label"`
	APIName      string `hcl:"api,attr"`
}
