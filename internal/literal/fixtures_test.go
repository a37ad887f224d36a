package literal

const fixtureDoc = `export interface RooferData {
  id: string;
  name: string;
  isHidden?: boolean;
  serviceAreas: {
    regions: string[];
    counties: string[];
    cities: string[];
  };
}

// Generated roofer directory. Keys are roofer slugs.
export const rooferData: Record<string, RooferData> = {
  'acme-roofing': {
    id: 'acme-roofing',
    name: 'Acme Roofing',
    phone: '(813) 555-0100',
    isPreferred: true,
    isHidden: false,
    serviceAreas: {
      regions: ['tampa-bay'],
      counties: ['hillsborough'],
      cities: [],
    },
  },
  "bay-shingle-co": {
    "id": "bay-shingle-co",
    "name": "Bay \"Shingle\" Co { and } [sons]",
    "isHidden": false
  },
  'coastal-roofs': {
    id: 'coastal-roofs',
    name: 'Coastal Roofs', // 'ghost-roofing': { is not a record
    aboutText: "We fix roofs; don't we? {yes}",
    /* isHidden: false, */
    isHidden: true,
  },
};

export function getRooferBySlug(slug: string): RooferData | undefined {
  return rooferData[slug];
}
`

const acmeBody = `
    id: 'acme-roofing',
    name: 'Acme Roofing',
    phone: '(813) 555-0100',
    isPreferred: true,
    isHidden: false,
    serviceAreas: {
      regions: ['tampa-bay'],
      counties: ['hillsborough'],
      cities: [],
    },
  `

const bayBody = `
    "id": "bay-shingle-co",
    "name": "Bay \"Shingle\" Co { and } [sons]",
    "isHidden": false
  `
