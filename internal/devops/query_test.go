package devops

import "testing"

func TestParseQueryURL(t *testing.T) {
	const id = "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"

	tests := []struct {
		name    string
		url     string
		want    QueryRef
		wantErr bool
	}{
		{
			name: "dev.azure.com",
			url:  "https://dev.azure.com/contoso/Fabrikam/_queries/query/" + id + "/",
			want: QueryRef{Organization: "contoso", Project: "Fabrikam", QueryID: id},
		},
		{
			name: "escaped project",
			url:  "https://dev.azure.com/contoso/My%20Project/_queries/query-edit/" + id,
			want: QueryRef{Organization: "contoso", Project: "My Project", QueryID: id},
		},
		{
			name: "visualstudio.com",
			url:  "https://contoso.visualstudio.com/Fabrikam/_queries/query/" + id,
			want: QueryRef{Organization: "contoso", Project: "Fabrikam", QueryID: id},
		},
		{
			name: "visualstudio.com with collection",
			url:  "https://contoso.visualstudio.com/DefaultCollection/Fabrikam/_queries/query/" + id + "/",
			want: QueryRef{Organization: "contoso", Project: "Fabrikam", QueryID: id},
		},
		{name: "visualstudio.com with extra segment", url: "https://contoso.visualstudio.com/Other/Fabrikam/_queries/query/" + id, wantErr: true},
		{name: "not a query", url: "https://dev.azure.com/contoso/Fabrikam/_workitems/edit/42", wantErr: true},
		{name: "missing id", url: "https://dev.azure.com/contoso/Fabrikam/_queries/query/", wantErr: true},
		{name: "bad id", url: "https://dev.azure.com/contoso/Fabrikam/_queries/query/recent", wantErr: true},
		{name: "garbage", url: "::not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQueryURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQueryURL failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
